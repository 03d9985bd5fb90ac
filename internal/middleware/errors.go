package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/ritesshguptaa/recipy-app-api/internal/handler/dto"
)

// WriteError writes the JSON error envelope. fields is omitted when empty.
func WriteError(w http.ResponseWriter, status int, code, message string, fields map[string][]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: dto.ErrorBody{
		Code:    code,
		Message: message,
		Fields:  fields,
	}})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	WriteError(w, status, code, message, nil)
}
