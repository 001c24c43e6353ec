package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ghaggin/coachportal/internal/api"
	"github.com/ghaggin/coachportal/internal/middleware"
	"github.com/ghaggin/coachportal/internal/model"
	"go.uber.org/zap"
)

const (
	surveySteps       = 3
	defaultCommitment = "10"

	msgPickObjective    = "Please select a main objective"
	msgDescribeObstacle = "Please describe your biggest challenge"
	msgSurveySubmitted  = "Survey submitted successfully!"
	msgSurveyFailed     = "Failed to submit survey. Please try again."

	actionBack = "back"
)

type goalOption struct {
	Value string
	Label string
}

var goalOptions = []goalOption{
	{"career", "Career Advancement"},
	{"health", "Health & Wellness"},
	{"business", "Business Growth"},
	{"relationships", "Relationships"},
	{"other", "Other"},
}

var commitmentScale = []int{2, 4, 6, 8, 10}

type surveyView struct {
	Step  int
	Total int
	Error string
	Form  surveyForm
	Goals []goalOption
	Scale []int
}

func newSurveyView(step int, form surveyForm) surveyView {
	if form.Commitment == "" {
		form.Commitment = defaultCommitment
	}
	return surveyView{
		Step:  step,
		Total: surveySteps,
		Form:  form,
		Goals: goalOptions,
		Scale: commitmentScale,
	}
}

func (s *Server) surveyPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "survey.html", "Survey", newSurveyView(1, surveyForm{}))
}

// submitSurvey advances the wizard one step per post. Answers from earlier
// steps travel as hidden fields, and only the last step talks to the
// backend.
func (s *Server) submitSurvey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form surveyForm
	if err := decodeForm(r, &form); err != nil {
		s.log.Info("bad survey form", zap.Error(err))
		view := newSurveyView(1, surveyForm{})
		view.Error = msgBadForm
		s.render(w, r, http.StatusBadRequest, "survey.html", "Survey", view)
		return
	}

	step := min(max(form.Step, 1), surveySteps)

	if form.Action == actionBack {
		s.render(w, r, http.StatusOK, "survey.html", "Survey", newSurveyView(max(step-1, 1), form))
		return
	}

	if bad, msg := firstInvalidStep(step, form); msg != "" {
		s.sessions.Flash(ctx, middleware.FlashError, msg)
		s.render(w, r, http.StatusUnprocessableEntity, "survey.html", "Survey", newSurveyView(bad, form))
		return
	}

	if step < surveySteps {
		s.render(w, r, http.StatusOK, "survey.html", "Survey", newSurveyView(step+1, form))
		return
	}

	if _, err := s.api.SubmitSurvey(ctx, surveyResponse(form)); err != nil {
		if api.Status(err) == http.StatusUnauthorized {
			s.expired(w, r)
			return
		}
		msg := api.Message(err)
		if msg == "" {
			msg = msgSurveyFailed
		}
		s.log.Warn("survey submit failed", zap.Error(err))
		s.sessions.Flash(ctx, middleware.FlashError, msg)
		view := newSurveyView(step, form)
		view.Error = msg
		s.render(w, r, http.StatusBadGateway, "survey.html", "Survey", view)
		return
	}

	s.sessions.Flash(ctx, middleware.FlashSuccess, msgSurveySubmitted)
	res := s.controller.CompleteSurvey(ctx)
	http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
}

// firstInvalidStep checks steps 1 through step, since earlier answers
// arrive as hidden fields the browser can drop or rewrite.
func firstInvalidStep(step int, form surveyForm) (int, string) {
	for i := 1; i <= step; i++ {
		if msg := validateStep(i, form); msg != "" {
			return i, msg
		}
	}
	return step, ""
}

// validateStep returns the message for the first problem on step, or "".
func validateStep(step int, form surveyForm) string {
	switch step {
	case 1:
		if !validGoal(form.Goal) {
			return msgPickObjective
		}
	case 2:
		if strings.TrimSpace(form.Challenges) == "" {
			return msgDescribeObstacle
		}
	}
	return ""
}

func validGoal(goal string) bool {
	for _, g := range goalOptions {
		if g.Value == goal {
			return true
		}
	}
	return false
}

func surveyResponse(form surveyForm) model.SurveyResponse {
	goals := form.Goal
	if form.GoalDetails != "" {
		goals = fmt.Sprintf("%s: %s", form.Goal, form.GoalDetails)
	}

	commitment := form.Commitment
	if commitment == "" {
		commitment = defaultCommitment
	}

	return model.SurveyResponse{
		Goals:           goals,
		Challenges:      form.Challenges,
		ExperienceLevel: commitment,
		AdditionalNotes: fmt.Sprintf("Commitment Level: %s/10", commitment),
	}
}
