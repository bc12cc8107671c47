package controller

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ILYXAAA/SecretsScanner-service/internal/entity"
)

// scanRequest is the wire shape of POST /scan and one item of POST
// /multi_scan's batch.
type scanRequest struct {
	ProjectName string `json:"project_name"`
	RepoURL     string `json:"repo_url"`
	RefType     string `json:"ref_type"`
	Ref         string `json:"ref"`
	CallbackURL string `json:"callback_url"`
}

func (r scanRequest) Validate(ctx context.Context) error {
	return validation.ValidateStructWithContext(ctx, &r,
		validation.Field(&r.ProjectName, validation.Required),
		validation.Field(&r.RepoURL, validation.Required),
		validation.Field(&r.CallbackURL, validation.Required),
		validation.Field(&r.RefType, validation.Required, validation.In("branch", "tag", "commit")),
		validation.Field(&r.Ref, validation.Required),
	)
}

func (r scanRequest) toJob() entity.ScanJob {
	return entity.ScanJob{
		ProjectName: r.ProjectName,
		RepoURL:     r.RepoURL,
		RefType:     entity.RefType(r.RefType),
		Ref:         r.Ref,
		CallbackURL: r.CallbackURL,
	}
}

// multiScanRequest is the wire shape of POST /multi_scan.
type multiScanRequest struct {
	Items []scanRequest `json:"items"`
}

func (r multiScanRequest) Validate(ctx context.Context) error {
	if len(r.Items) == 0 {
		return validation.NewError("validation_required", "items must not be empty")
	}
	for i := range r.Items {
		if err := r.Items[i].Validate(ctx); err != nil {
			return err
		}
	}
	return nil
}

type acceptedResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status        string `json:"status"`
	QueueSize     int    `json:"queue_size"`
	MaxWorkers    int    `json:"max_workers"`
	ActiveWorkers int    `json:"active_workers"`
}
