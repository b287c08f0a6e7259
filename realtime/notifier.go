package realtime

const (
	EventHello            = "hello"
	EventCredentialIssued = "credential-issued"
	EventClientTokenSub   = "client-token-sub"
)

type HelloPayload struct {
	Message string `json:"message"`
}

type CredentialPayload struct {
	JWT string `json:"jwt"`
}

// Sender is satisfied by *Registry
type Sender interface {
	Send(id, event string, payload any) bool
}

// Notifier is the fire-and-forget notification channel. No ack, no retry.
type Notifier struct {
	sender Sender
}

func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

func (n *Notifier) Hello(connectionID string) bool {
	return n.sender.Send(connectionID, EventHello, HelloPayload{Message: "user connected"})
}

func (n *Notifier) CredentialIssued(connectionID, jwt string) bool {
	return n.sender.Send(connectionID, EventCredentialIssued, CredentialPayload{JWT: jwt})
}
