package validation

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fakeAPI(overrides map[string]func(w http.ResponseWriter)) *httptest.Server {
	routes := map[string]func(w http.ResponseWriter){
		"GET /health": func(w http.ResponseWriter) {
			w.Write([]byte(`{"status":"healthy"}`))
		},
		"GET /events": func(w http.ResponseWriter) {
			w.Write([]byte(`{"events":[{"id":"1","title":"Isar Walk","capacity":20,"sold":3}]}`))
		},
		"POST /checkout": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Missing required fields: eventId, customerName, customerEmail"}`))
		},
		"POST /webhook": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"No signature provided"}`))
		},
		"POST /contact": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Spam detected"}`))
		},
	}
	for k, fn := range overrides {
		routes[k] = fn
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fn(w)
	}))
}

func TestValidateAllPasses(t *testing.T) {
	srv := fakeAPI(nil)
	defer srv.Close()

	assert.NoError(t, NewAPIValidator(srv.URL).ValidateAll())
}

func TestValidateAllAcceptsRateLimitedContact(t *testing.T) {
	srv := fakeAPI(map[string]func(w http.ResponseWriter){
		"POST /contact": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many requests. Please try again later."}`))
		},
	})
	defer srv.Close()

	assert.NoError(t, NewAPIValidator(srv.URL).ValidateAll())
}

func TestValidateAllReportsWrongMessage(t *testing.T) {
	srv := fakeAPI(map[string]func(w http.ResponseWriter){
		"POST /webhook": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad request"}`))
		},
	})
	defer srv.Close()

	err := NewAPIValidator(srv.URL).ValidateAll()
	assert.ErrorContains(t, err, "webhook validation failed")
}

func TestValidateAllReportsMissingEventsArray(t *testing.T) {
	srv := fakeAPI(map[string]func(w http.ResponseWriter){
		"GET /events": func(w http.ResponseWriter) {
			w.Write([]byte(`{}`))
		},
	})
	defer srv.Close()

	err := NewAPIValidator(srv.URL).ValidateAll()
	assert.ErrorContains(t, err, "events validation failed")
}
