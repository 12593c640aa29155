package gateway

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/asaskevich/govalidator"

	"scanview/internal/domain"
	"scanview/pkg/apierrors"
)

// AuthResult is the backend's answer to login and signup.
type AuthResult struct {
	Token    string          `json:"token"`
	Identity domain.Identity `json:"user"`
}

// Login exchanges credentials for a token. The caller installs the result in
// the session store.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return AuthResult{}, err
	}

	body, err := jsonBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return AuthResult{}, err
	}

	var result AuthResult
	if err := c.call(ctx, "login", http.MethodPost, "/login", body, "application/json", &result); err != nil {
		return AuthResult{}, err
	}
	if result.Token == "" {
		return AuthResult{}, apierrors.New(apierrors.KindMalformedResponse, "login response is missing a token")
	}
	return result, nil
}

// Signup registers an account; the backend logs the new user straight in.
func (c *Client) Signup(ctx context.Context, name, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if strings.TrimSpace(name) == "" {
		return AuthResult{}, apierrors.New(apierrors.KindValidation, "name is required")
	}
	if err := validateCredentials(email, password); err != nil {
		return AuthResult{}, err
	}

	body, err := jsonBody(map[string]string{"name": name, "email": email, "password": password})
	if err != nil {
		return AuthResult{}, err
	}

	var result AuthResult
	if err := c.call(ctx, "signup", http.MethodPost, "/signup", body, "application/json", &result); err != nil {
		return AuthResult{}, err
	}
	if result.Token == "" {
		return AuthResult{}, apierrors.New(apierrors.KindMalformedResponse, "signup response is missing a token")
	}
	return result, nil
}

// GetProfile fetches the authenticated practitioner record.
func (c *Client) GetProfile(ctx context.Context) (domain.Profile, error) {
	var profile domain.Profile
	if err := c.call(ctx, "get_profile", http.MethodGet, "/profile", nil, "", &profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

// SaveProfile persists edits and returns the stored record.
func (c *Client) SaveProfile(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	body, err := jsonBody(profile)
	if err != nil {
		return domain.Profile{}, err
	}

	var saved domain.Profile
	if err := c.call(ctx, "save_profile", http.MethodPut, "/profile", body, "application/json", &saved); err != nil {
		return domain.Profile{}, err
	}
	return saved, nil
}

// Classify uploads one image for diagnosis. The payload goes out as
// multipart/form-data with the boundary negotiated by the multipart writer;
// forcing a JSON content type onto the binary body would corrupt the request.
func (c *Client) Classify(ctx context.Context, filename string, image io.Reader) (domain.ClassifyResult, error) {
	if image == nil {
		return domain.ClassifyResult{}, apierrors.New(apierrors.KindValidation, "no image selected")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return domain.ClassifyResult{}, apierrors.Wrap(err, apierrors.KindValidation, "could not frame image upload")
	}
	n, err := io.Copy(part, image)
	if err != nil {
		return domain.ClassifyResult{}, apierrors.Wrap(err, apierrors.KindValidation, "could not read image")
	}
	if n == 0 {
		return domain.ClassifyResult{}, apierrors.New(apierrors.KindValidation, "image is empty")
	}
	if err := writer.Close(); err != nil {
		return domain.ClassifyResult{}, apierrors.Wrap(err, apierrors.KindValidation, "could not frame image upload")
	}

	var result domain.ClassifyResult
	err = c.call(ctx, "classify", http.MethodPost, "/classify",
		&buf, writer.FormDataContentType(), &result)
	if err != nil {
		return domain.ClassifyResult{}, err
	}
	if result.Prediction == "" {
		return domain.ClassifyResult{}, apierrors.New(apierrors.KindMalformedResponse, "classify response is missing a prediction")
	}
	return result, nil
}

// ListReports fetches the authenticated user's classification history.
func (c *Client) ListReports(ctx context.Context) ([]domain.Report, error) {
	var reports []domain.Report
	if err := c.call(ctx, "list_reports", http.MethodGet, "/reports", nil, "", &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func validateCredentials(email, password string) error {
	if email == "" {
		return apierrors.New(apierrors.KindValidation, "email is required")
	}
	if !govalidator.IsEmail(email) {
		return apierrors.New(apierrors.KindValidation, "invalid email address")
	}
	if password == "" {
		return apierrors.New(apierrors.KindValidation, "password is required")
	}
	return nil
}
