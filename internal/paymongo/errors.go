package paymongo

import (
	"encoding/json"
	"fmt"
)

// Kind classe les échecs de l'appel PayMongo. Chaque kind se projette sur un
// statut HTTP distinct côté checkout : timeout → 504, transport/gateway/
// réponse inattendue → 502.
type Kind int

const (
	// KindTimeout : l'appel sortant a dépassé son délai.
	KindTimeout Kind = iota
	// KindTransport : échec réseau avant d'obtenir une réponse.
	KindTransport
	// KindGateway : PayMongo a répondu avec un statut d'erreur.
	KindGateway
	// KindMalformed : réponse non-JSON ou champs requis absents.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	case KindGateway:
		return "gateway"
	case KindMalformed:
		return "malformed"
	}
	return "unknown"
}

// Error porte le kind, le statut HTTP du provider et le payload brut pour le
// diagnostic (renvoyé tel quel dans les réponses 502).
type Error struct {
	Kind       Kind
	StatusCode int
	Raw        json.RawMessage
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("paymongo %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("paymongo %s (HTTP %d)", e.Kind, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}
