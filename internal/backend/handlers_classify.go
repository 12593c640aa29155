package backend

import (
	"errors"
	"hash/fnv"
	"io"
	"net/http"
	"time"

	"scanview/internal/domain"
)

// maxUploadBytes bounds classify uploads; blood smear scans are a few MB.
const maxUploadBytes = 32 << 20

// Labels and explanations mirror the hosted classifier's output surface.
var classifyLabels = []string{"ALL", "AML", "CLL", "CML", "Myeloma", "Normal"}

var classifyExplanations = map[string]string{
	"ALL":     "Acute Lymphoblastic Leukemia: Immature lymphoid cells rapidly increase in number.",
	"AML":     "Acute Myeloid Leukemia: Excessive immature myeloid cells in bone marrow and blood.",
	"CLL":     "Chronic Lymphocytic Leukemia: Slow-growing cancer of lymphoid cells, typically in older adults.",
	"CML":     "Chronic Myeloid Leukemia: Uncontrolled growth of myeloid cells, associated with Philadelphia chromosome.",
	"Myeloma": "Multiple Myeloma: Cancer of plasma cells affecting bone marrow and leading to bone lesions.",
	"Normal":  "Healthy blood smear with no signs of abnormal white blood cell proliferation.",
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No file")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		h.logger.ErrorContext(ctx, "could not read upload", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error processing image")
		return
	}
	// The hosted classifier rejects images it cannot read as blood smears;
	// the stub treats tiny payloads the same way.
	if len(payload) < 16 {
		writeError(w, http.StatusBadRequest, "Analysis failed")
		return
	}

	user, err := h.users.FindByID(ctx, userID(ctx))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		h.logger.ErrorContext(ctx, "could not load user", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error processing image")
		return
	}

	result := stubPrediction(payload)

	report := domain.Report{
		Username:   user.Name,
		Disease:    result.Prediction,
		Confidence: result.Confidence,
		Stage:      result.Stage,
		Date:       time.Now().Format("2006-01-02 15:04"),
	}
	if err := h.reports.Append(ctx, user.ID, report); err != nil {
		h.logger.ErrorContext(ctx, "could not record report", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error processing image")
		return
	}

	h.logger.InfoContext(ctx, "image classified",
		"user_id", user.ID,
		"file", header.Filename,
		"prediction", result.Prediction,
	)
	writeJSON(w, http.StatusOK, result)
}

// stubPrediction derives a stable verdict from the payload so repeated
// uploads of the same image classify identically.
func stubPrediction(payload []byte) domain.ClassifyResult {
	digest := fnv.New32a()
	_, _ = digest.Write(payload)
	sum := digest.Sum32()

	label := classifyLabels[sum%uint32(len(classifyLabels))]
	confidence := 80 + float64(sum%1999)/100

	return domain.ClassifyResult{
		Prediction:  label,
		Confidence:  confidence,
		Stage:       "N/A",
		Explanation: classifyExplanations[label],
	}
}

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reports, err := h.reports.ListByUser(ctx, userID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "could not list reports", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list reports")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}
