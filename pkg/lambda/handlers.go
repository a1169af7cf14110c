package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"newtonmachine/pkg/render"

	"github.com/aws/aws-lambda-go/events"
)

// RenderImageResponse is the JSON body returned by RenderImage
type RenderImageResponse struct {
	Request render.Request `json:"request"`
	Image   string         `json:"image,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// RenderImage renders the JSON encoded render.Request in the request body
// and returns the image base64 encoded. Fields missing from the body keep
// their defaults.
func RenderImage(req events.APIGatewayProxyRequest) (*events.APIGatewayProxyResponse, error) {
	r := render.NewRequest("")
	if err := json.Unmarshal([]byte(req.Body), &r); err != nil {
		log.Println("[lambda] error unmarshalling request:", err)
		return respond(http.StatusBadRequest, RenderImageResponse{Request: r, Error: err.Error()})
	}

	log.Println("[lambda] received:", r)
	b, err := r.Render(context.Background(), nil)
	if err != nil {
		log.Println("[lambda] render failed:", err)
		status := http.StatusInternalServerError
		if render.IsBadRequest(err) {
			status = http.StatusBadRequest
		}
		return respond(status, RenderImageResponse{Request: r, Error: err.Error()})
	}

	return respond(http.StatusOK, RenderImageResponse{
		Request: r,
		Image:   base64.StdEncoding.EncodeToString(b),
	})
}

func respond(status int, body RenderImageResponse) (*events.APIGatewayProxyResponse, error) {
	b, err := json.Marshal(body)
	if err != nil {
		log.Println("[lambda] error marshaling result:", err)
		return nil, err
	}

	return &events.APIGatewayProxyResponse{
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		StatusCode: status,
		Body:       string(b),
	}, nil
}
