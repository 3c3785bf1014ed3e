// Package template defines the template renderer contract and its pongo2
// implementation shared by the HTML renderer and the server pages.
package template
