package session

import "log"

// Navigator moves the application to another page, e.g. the login page
// after the session expired.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

// LogNavigator only records the navigation in the log.
type LogNavigator struct{}

func (LogNavigator) Navigate(path string) {
	log.Printf("session: navigate to %s", path)
}
