// Package prompt asks declaratively described questions.
//
// Callers describe each question as a Field (text, secret, single choice, or
// multi choice) and hand the list to a Runner. FormRunner renders interactive
// terminal forms; LineRunner reads plain lines and suits pipes and dumb
// terminals. Either runner reports an aborted session as ErrCancelled.
package prompt
