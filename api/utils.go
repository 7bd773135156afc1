package api

import (
	"encoding/json"
	"log"
	"net/http"

	"ContabilidadSaas/api/constants"
)

// Error response helper
func RespondWithError(w http.ResponseWriter, status int, errMsg string) {
	log.Println("[ERROR]", errMsg)
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   errMsg,
	})
}

// RespondWithPayload sends a consistent JSON response and includes an arbitrary payload
func RespondWithPayload(w http.ResponseWriter, success bool, errMsg string, payload interface{}) {
	RespondWithFields(w, http.StatusOK, success, errMsg, payload, nil)
}

// RespondWithFields is RespondWithPayload with an explicit status and extra
// top-level keys (pagination, counts).
func RespondWithFields(w http.ResponseWriter, status int, success bool, errMsg string, payload interface{}, extra map[string]interface{}) {
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	resp := map[string]interface{}{"success": success}
	if !success && errMsg != "" {
		resp["error"] = errMsg
		log.Println("[ERROR] RespondWithPayload", errMsg)
	}
	if payload != nil {
		// use a conventional key `rows` for list payloads
		resp["rows"] = payload
	}
	for k, v := range extra {
		resp[k] = v
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
