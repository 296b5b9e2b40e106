package live

import (
	"encoding/json"

	"github.com/vango-dev/storefront/internal/errors"
)

// Message types sent by the browser.
const (
	TypeHello    = "hello"
	TypeNavigate = "navigate"
	TypeBack     = "back"
	TypeForward  = "forward"
	TypeQuery    = "query"
	TypeProducts = "products"
	TypeCart     = "cart"
	TypeUI       = "ui"
)

// Message types sent to the browser.
const (
	TypeRender = "render"
	TypeError  = "error"
)

// Message is a browser message. Which fields are set depends on Type.
type Message struct {
	Type string `json:"type"`

	// hello, navigate
	URL  string          `json:"url,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`

	// query
	Query map[string]string `json:"query,omitempty"`

	// products, cart, ui
	Op string `json:"op,omitempty"`

	// products
	Value     string `json:"value,omitempty"`
	Category1 string `json:"category1,omitempty"`
	Category2 string `json:"category2,omitempty"`

	// cart
	ProductID string `json:"productId,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

// Render carries the HTML of the current page.
type Render struct {
	Type string `json:"type"`
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// Error reports a rejected message.
type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeMessage parses a raw browser message.
func decodeMessage(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, errors.New("SF060").Wrap(err)
	}
	if msg.Type == "" {
		return Message{}, errors.New("SF060").WithDetail("missing message type")
	}
	return msg, nil
}

// errorMessage converts err into the message sent to the browser.
func errorMessage(err error) Error {
	msg := Error{Type: TypeError, Message: err.Error()}
	if e, ok := err.(*errors.Error); ok {
		msg.Code = e.Code
		msg.Message = e.Message
		if e.Detail != "" {
			msg.Message += ": " + e.Detail
		}
	}
	return msg
}
