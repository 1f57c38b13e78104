package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
	"github.com/yangxing-star/rongyun/internal/util"
)

func (s *Server) listActions(w http.ResponseWriter, _ *http.Request) {
	actions := rongcloud.Actions()
	out := make([]actionInfo, 0, len(actions))
	for _, a := range actions {
		out = append(out, actionInfo{Name: a.Name, Path: a.Path, ContentType: a.ContentType.String()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": out})
}

// invokeAction forwards a JSON object body as the action parameters. The
// content_type query parameter overrides the catalog encoding.
func (s *Server) invokeAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	action, ok := rongcloud.LookupAction(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown_action", "no action named "+name, false)
		return
	}

	params, err := s.decodeParams(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "body_too_large", err.Error(), false)
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid_body", err.Error(), false)
		return
	}

	ct := action.ContentType
	if raw := r.URL.Query().Get("content_type"); raw != "" {
		ct, err = rongcloud.ParseContentType(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_content_type", err.Error(), false)
			return
		}
	}

	var resp *rongcloud.Response
	if ct == action.ContentType {
		resp, err = s.invoker.Invoke(r.Context(), name, params)
	} else {
		resp, err = s.invoker.SendAs(r.Context(), action, params, ct)
	}
	if err != nil {
		s.logger.Warn().
			Str("request_id", RequestIDFromContext(r.Context())).
			Str("action", name).
			Err(err).
			Msg("gateway: action dispatch failed")
		writeDispatchError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toActionResponse(RequestIDFromContext(r.Context()), name, resp))
}

func (s *Server) decodeParams(w http.ResponseWriter, r *http.Request) (rongcloud.Params, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return rongcloud.Params{}, nil
	}
	var params rongcloud.Params
	if err := json.Unmarshal(body, &params); err != nil {
		return nil, err
	}
	if params == nil {
		params = rongcloud.Params{}
	}
	return params, nil
}

func (s *Server) blacklistAdd(w http.ResponseWriter, r *http.Request) {
	s.blacklistPair(w, r, rongcloud.ActionUserBlacklistAdd.Name, s.invoker.BlacklistAdd)
}

func (s *Server) blacklistRemove(w http.ResponseWriter, r *http.Request) {
	s.blacklistPair(w, r, rongcloud.ActionUserBlacklistRemove.Name, s.invoker.BlacklistRemove)
}

type pairFunc func(ctx context.Context, userID, blackUserID string) (rongcloud.PairResult, error)

func (s *Server) blacklistPair(w http.ResponseWriter, r *http.Request, action string, call pairFunc) {
	userID, err := util.ValidateUserID(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_user_id", err.Error(), false)
		return
	}
	blackUserID, err := util.ValidateUserID(chi.URLParam(r, "blackUserID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_user_id", err.Error(), false)
		return
	}

	requestID := RequestIDFromContext(r.Context())
	pair, err := call(r.Context(), userID, blackUserID)
	out := pairResponse{
		RequestID: requestID,
		Success:   err == nil && pair.Success(),
		Forward:   toActionResponse(requestID, action, pair.Forward),
		Reverse:   toActionResponse(requestID, action, pair.Reverse),
	}
	if err != nil {
		s.logger.Warn().
			Str("request_id", requestID).
			Str("action", action).
			Str("user_id", userID).
			Str("black_user_id", blackUserID).
			Err(err).
			Msg("gateway: blacklist pair failed")
		if pair.Forward == nil {
			writeDispatchError(w, r, err)
			return
		}
		out.Error = err.Error()
		writeJSON(w, statusForPartialPair(err), out)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// statusForPartialPair reports a pair whose forward half was applied but
// whose reverse half produced no reply.
func statusForPartialPair(err error) int {
	if errors.Is(err, rongcloud.ErrTransport) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
