package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/clustertemplates/internal/api/request"
	"github.com/edvin/clustertemplates/internal/api/response"
	"github.com/edvin/clustertemplates/internal/api/view"
	"github.com/edvin/clustertemplates/internal/metrics"
	"github.com/edvin/clustertemplates/internal/model"
)

const msgGenerateFailed = "The template could not be generated. Please try again later."

// Generator renders and stores a deployment template for a request.
type Generator interface {
	Generate(ctx context.Context, req *model.ClusterRequest) (*model.Artifact, error)
}

type Template struct {
	svc Generator
}

func NewTemplate(svc Generator) *Template {
	return &Template{svc: svc}
}

// Index serves the cluster form. A submission carrying the generate flag
// is validated; valid submissions are rendered, uploaded, and answered with
// the result page.
func (h *Template) Index(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, http.StatusBadRequest, view.Form{Errors: []string{"Invalid form submission."}})
		return
	}

	form := request.ParseClusterForm(r.PostForm)
	if !form.Generate {
		h.renderForm(w, r, http.StatusOK, view.Form{})
		return
	}

	req, verrs := form.Validate()
	if len(verrs) > 0 {
		metrics.TemplateFailures.WithLabelValues("validation").Inc()
		logger.Debug().Strs("errors", verrs.Messages()).Msg("cluster form rejected")
		h.renderForm(w, r, http.StatusOK, view.Form{Form: form, Errors: verrs.Messages()})
		return
	}

	artifact, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		logger.Error().Err(err).Msg("generate template")
		h.renderForm(w, r, http.StatusBadGateway, view.Form{Form: form, Errors: []string{msgGenerateFailed}})
		return
	}

	err = response.WriteHTML(w, http.StatusOK, func(w http.ResponseWriter) error {
		return view.RenderResult(w, view.Result{TemplateURL: artifact.URL})
	})
	if err != nil {
		logger.Error().Err(err).Msg("render result page")
	}
}

// Create is the JSON variant of Index: 201 with the stored artifact, 422
// with the ordered validation errors, 502 when generation fails.
func (h *Template) Create(w http.ResponseWriter, r *http.Request) {
	var body request.CreateTemplate
	if err := request.Decode(r, &body); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, verrs := body.Form().Validate()
	if len(verrs) > 0 {
		metrics.TemplateFailures.WithLabelValues("validation").Inc()
		response.WriteJSON(w, http.StatusUnprocessableEntity, ValidationFailure{Errors: verrs})
		return
	}

	artifact, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("generate template")
		response.WriteError(w, http.StatusBadGateway, "template upload failed")
		return
	}

	response.WriteJSON(w, http.StatusCreated, artifact)
}

// ValidationFailure is the 422 body of the template API.
type ValidationFailure struct {
	Errors request.ValidationErrors `json:"errors"`
}

func (h *Template) renderForm(w http.ResponseWriter, r *http.Request, status int, f view.Form) {
	err := response.WriteHTML(w, status, func(w http.ResponseWriter) error {
		return view.RenderForm(w, f)
	})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render form page")
	}
}
