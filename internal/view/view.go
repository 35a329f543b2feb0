// Package view renders folio's HTML pages as templ components.
//
//go:generate templ generate
package view

// Flash is a one-shot notice shown above the page body.
type Flash struct {
	Kind    string
	Message string
}

// Page carries the chrome shared by every page.
type Page struct {
	Title    string
	UserName string
	Flash    *Flash
}

// Renderer builds page components. ImageURL maps a stored image key to the
// address browsers load it from.
type Renderer struct {
	ImageURL func(key string) string
}

// NewRenderer creates a Renderer.
func NewRenderer(imageURL func(string) string) *Renderer {
	return &Renderer{ImageURL: imageURL}
}
