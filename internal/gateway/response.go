package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// Response is the proxy envelope returned by every handler
type Response = events.APIGatewayProxyResponse

// Headers returns the content type and CORS headers carried by every response
func Headers() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "POST,OPTIONS",
	}
}

// Preflight answers a CORS preflight with an empty body
func Preflight() Response {
	return Response{
		StatusCode: http.StatusOK,
		Headers:    Headers(),
		Body:       "",
	}
}

// JSON encodes payload as the response body
func JSON(status int, payload any) Response {
	body, err := json.Marshal(payload)
	if err != nil {
		return Error(http.StatusInternalServerError, err.Error())
	}
	return Response{
		StatusCode: status,
		Headers:    Headers(),
		Body:       string(body),
	}
}

// errorBody is the shape of every error response
type errorBody struct {
	Error string `json:"error"`
}

// Error builds an {"error": message} response
func Error(status int, message string) Response {
	body, _ := json.Marshal(errorBody{Error: message})
	return Response{
		StatusCode: status,
		Headers:    Headers(),
		Body:       string(body),
	}
}
