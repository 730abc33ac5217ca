// Package git reads file history from the site's own repository.
package git
