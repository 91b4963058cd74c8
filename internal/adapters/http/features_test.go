package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-sync/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// apiContext holds state shared across step definitions within a scenario.
type apiContext struct {
	server       *httptest.Server
	client       *http.Client
	response     *http.Response
	responseBody []byte
}

func (ac *apiContext) reset() {
	if ac.server != nil {
		ac.server.Close()
	}

	ac.server = nil
	ac.response = nil
	ac.responseBody = nil
}

func (ac *apiContext) theQuoteServiceIsRunning() error {
	svc := app.NewQuoteService(app.QuoteServiceConfig{
		Store:   memory.NewStore(),
		Session: memory.NewStore(),
		Logger:  discardLogger(),
	})
	if err := svc.Init(context.Background()); err != nil {
		return fmt.Errorf("initializing quote service: %w", err)
	}

	engine := gin.New()
	SetupRouter(engine, RouterConfig{
		ServiceName:   "quote-sync-features",
		HealthHandler: handlers.NewHealthHandler(ports.NewHealthRegistry(0), handlers.BuildInfo{}, prometheus.NewRegistry()),
		QuoteHandler:  handlers.NewQuoteHandler(svc),
		SyncHandler:   handlers.NewSyncHandler(nil, nil, svc),
		Timeout:       DefaultRequestTimeout,
	})

	ac.server = httptest.NewServer(engine)
	ac.client = ac.server.Client()
	ac.client.Timeout = 10 * time.Second

	return nil
}

func (ac *apiContext) do(method, path string, body io.Reader) error {
	if ac.server == nil {
		return errors.New("service is not running")
	}

	req, err := http.NewRequestWithContext(context.Background(), method, ac.server.URL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ac.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	ac.response = resp

	ac.responseBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	return nil
}

func (ac *apiContext) iRequest(method, path string) error {
	return ac.do(method, path, nil)
}

func (ac *apiContext) iSendWithBody(method, path string, body *godog.DocString) error {
	return ac.do(method, path, strings.NewReader(body.Content))
}

func (ac *apiContext) theResponseStatusShouldBe(expected int) error {
	if ac.response == nil {
		return errors.New("no response received")
	}

	if ac.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expected, ac.response.StatusCode, ac.responseBody)
	}

	return nil
}

func (ac *apiContext) theResponseShouldContain(text string) error {
	if !strings.Contains(string(ac.responseBody), text) {
		return fmt.Errorf("response body does not contain %q.\nBody: %s", text, ac.responseBody)
	}

	return nil
}

func (ac *apiContext) theJSONFieldShouldBe(field, expected string) error {
	var doc map[string]any
	if err := json.Unmarshal(ac.responseBody, &doc); err != nil {
		return fmt.Errorf("response is not a JSON object: %w", err)
	}

	value, ok := doc[field]
	if !ok {
		return fmt.Errorf("field %q missing from %s", field, ac.responseBody)
	}

	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("field %q: expected %q, got %q", field, expected, got)
	}

	return nil
}

func initializeScenario(sc *godog.ScenarioContext) {
	ac := &apiContext{}

	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		ac.reset()
		return ctx, nil
	})

	sc.Step(`^the quote service is running$`, ac.theQuoteServiceIsRunning)
	sc.Step(`^I request (GET|POST|PUT|DELETE) "([^"]*)"$`, ac.iRequest)
	sc.Step(`^I send (POST|PUT) "([^"]*)" with body:$`, ac.iSendWithBody)
	sc.Step(`^the response status should be (\d+)$`, ac.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, ac.theResponseShouldContain)
	sc.Step(`^the JSON field "([^"]*)" should be "([^"]*)"$`, ac.theJSONFieldShouldBe)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
			Tags:     os.Getenv("GODOG_TAGS"),
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
