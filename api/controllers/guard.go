package controllers

import (
	"net/http"

	"github.com/mercadito-app/mercadito-backend/api/responses"
	"github.com/mercadito-app/mercadito-backend/api/validators"
	guardsvc "github.com/mercadito-app/mercadito-backend/internal/guard"
	"github.com/mercadito-app/mercadito-backend/pkg/logger"
)

type interceptRequest struct {
	Source string `json:"source" validate:"required,max=60"`
	Target string `json:"target" validate:"required,max=300"`
}

type interceptResponse struct {
	Proceed     bool `json:"proceed"`
	Intercepted bool `json:"intercepted"`
	Ignored     bool `json:"ignored"`
}

type resolveRequest struct {
	Decision string `json:"decision" validate:"required,oneof=stay discard"`
}

type resolveResponse struct {
	Decision string           `json:"decision"`
	Replay   *guardsvc.Intent `json:"replay,omitempty"`
}

// GuardIntercept reports whether a leave-navigation may proceed or must
// wait for an explicit decision because the cart is non-empty.
func GuardIntercept(svc guardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body interceptRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Intercept(r.Context(), actor, guardsvc.Intent{
			Source: body.Source,
			Target: body.Target,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, interceptResponse{
			Proceed:     outcome.Proceed,
			Intercepted: outcome.Intercepted,
			Ignored:     outcome.Ignored,
		})
	}
}

// GuardResolve answers a pending intercept. Discard clears the cart and
// returns the suppressed intent so the client can replay it.
func GuardResolve(svc guardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body resolveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution, err := svc.Resolve(r.Context(), actor, guardsvc.Decision(body.Decision))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolveResponse{
			Decision: string(resolution.Decision),
			Replay:   resolution.Replay,
		})
	}
}

// GuardPending exposes the currently suppressed intent, if any.
func GuardPending(svc guardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.Pending(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, intent)
	}
}
