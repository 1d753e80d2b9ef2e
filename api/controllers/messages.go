package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jvacosta/dailyfish-backend/api/responses"
	"github.com/jvacosta/dailyfish-backend/api/validators"
	messagesvc "github.com/jvacosta/dailyfish-backend/internal/messages"
	"github.com/jvacosta/dailyfish-backend/pkg/enums"
	pkgerrors "github.com/jvacosta/dailyfish-backend/pkg/errors"
	"github.com/jvacosta/dailyfish-backend/pkg/logger"
	"github.com/jvacosta/dailyfish-backend/pkg/pagination"
)

type createMessageRequest struct {
	OrderID *string `json:"order_id,omitempty" validate:"omitempty,uuid"`
	Type    string  `json:"type,omitempty"`
	Subject string  `json:"subject" validate:"required"`
	Body    string  `json:"body" validate:"required"`
}

// CreateMessage opens a buyer-to-seller thread, optionally tied to an order.
func CreateMessage(svc messagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createMessageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := messagesvc.CreateMessageInput{
			Subject: payload.Subject,
			Body:    payload.Body,
		}

		if raw := strings.TrimSpace(payload.Type); raw != "" {
			messageType, err := enums.ParseMessageType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
				return
			}
			input.Type = messageType
		}

		if payload.OrderID != nil {
			orderID, err := uuid.Parse(strings.TrimSpace(*payload.OrderID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order_id"))
				return
			}
			input.OrderID = &orderID
		}

		message, err := svc.Create(r.Context(), senderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// ListMyMessages returns the caller's message threads.
func ListMyMessages(svc messagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := parseListMessagesQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), senderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminListMessages returns every thread for the seller inbox.
func AdminListMessages(svc messagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseListMessagesQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListAll(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// MarkMessageRead stamps a message as read. Re-reading is a no-op.
func MarkMessageRead(svc messagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, err := parseUUIDParam(r, "messageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.MarkRead(r.Context(), messageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, message)
	}
}

func parseListMessagesQuery(r *http.Request) (messagesvc.ListMessagesInput, error) {
	query := r.URL.Query()

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return messagesvc.ListMessagesInput{}, err
	}

	input := messagesvc.ListMessagesInput{
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(query.Get("cursor")),
		},
	}

	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		messageType, err := enums.ParseMessageType(raw)
		if err != nil {
			return messagesvc.ListMessagesInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
		}
		input.Filters.Type = &messageType
	}

	if raw := strings.TrimSpace(query.Get("unread")); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			return messagesvc.ListMessagesInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unread flag")
		}
		input.Filters.Unread = &unread
	}

	if raw := strings.TrimSpace(query.Get("order_id")); raw != "" {
		orderID, err := uuid.Parse(raw)
		if err != nil {
			return messagesvc.ListMessagesInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order_id")
		}
		input.Filters.OrderID = &orderID
	}

	return input, nil
}
