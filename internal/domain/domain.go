// Package domain holds the wire-level records exchanged with the diagnostic
// backend. Session state lives in internal/session; transport concerns live
// in internal/gateway.
package domain

// Identity is the denormalized user record cached for display. It may be
// stale relative to the backend profile and must never drive an
// authentication decision.
type Identity struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Profile captures the editable practitioner record behind GET/PUT /profile.
type Profile struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	Hospital       string `json:"hospital,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Location       string `json:"location,omitempty"`
	About          string `json:"about,omitempty"`
}

// ClassifyResult is the backend's verdict for one uploaded image.
type ClassifyResult struct {
	Prediction  string  `json:"prediction"`
	Confidence  float64 `json:"confidence"`
	Stage       string  `json:"stage,omitempty"`
	Explanation string  `json:"explanation,omitempty"`
	GradcamURL  string  `json:"gradcam_url,omitempty"`
	PDFURL      string  `json:"pdf_url,omitempty"`
}

// Report is one row of the authenticated user's classification history.
type Report struct {
	Username   string  `json:"username"`
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
	Stage      string  `json:"stage"`
	Date       string  `json:"date"`
	GradcamURL string  `json:"gradcam_url,omitempty"`
	PDFURL     string  `json:"pdf_url,omitempty"`
}
