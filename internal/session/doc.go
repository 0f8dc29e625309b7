// Package session talks to the remote authentication API on behalf of a
// client application.
//
// A Client logs in and signs up users, keeps the issued bearer token in a
// tokenstore.Store, and decorates outgoing requests with it:
//
//	store := tokenstore.NewFileStore("./.authclient-token.json")
//	client, err := session.NewClient("http://localhost:8188", store)
//	if _, err := client.Login(ctx, "alice", "correct horse battery"); err != nil {
//		// *AuthenticationError carries the server message
//	}
//	resp, err := client.MakeAuthenticatedRequest(ctx, "/api/auth/me", nil)
//
// A 401 on an authenticated request clears the stored token, sends the
// Navigator to the login page and returns *SessionExpiredError.
package session
