package mailbox

import "fmt"

// ProviderError carries a non-success response from the mail provider.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("gmail api error: status %d: %s", e.Status, e.Body)
}
