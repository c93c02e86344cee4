// Package cdn maps storage keys to the URLs they are served from.
package cdn
