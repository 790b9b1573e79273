// Package resilience groups the fault tolerance wrappers around the service's
// external calls: circuit breakers for the model APIs (Claude, OpenAI) and
// the database, and retry with exponential backoff for transient failures.
//
// A model inference call composes both layers:
//
//	cb := circuitbreaker.New(circuitbreaker.ClaudeAPIConfig())
//	err := retry.WithBackoff(ctx, retry.ModelAPIConfig(), func() error {
//	    _, err := cb.Execute(func() (interface{}, error) {
//	        return callModelAPI(ctx)
//	    })
//	    return err
//	})
package resilience
