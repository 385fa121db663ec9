// Package api serves the cluster template form, the template API and the
// deployment webhook.
package api
