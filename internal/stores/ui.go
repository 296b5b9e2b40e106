package stores

import "github.com/vango-dev/storefront/pkg/store"

// Toast kinds.
const (
	ToastInfo    = "info"
	ToastSuccess = "success"
	ToastError   = "error"
	ToastWarning = "warning"
)

// Toast is a transient notification.
type Toast struct {
	Visible bool   `json:"isVisible"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// UIState is the state of the UI store.
type UIState struct {
	CartModalOpen bool  `json:"cartModalOpen"`
	GlobalLoading bool  `json:"globalLoading"`
	Toast         Toast `json:"toast"`
}

// InitialUIState has every overlay hidden.
func InitialUIState() UIState {
	return UIState{Toast: Toast{Type: ToastInfo}}
}

// UIAction is an action of the UI store.
type UIAction interface {
	uiAction()
}

type (
	OpenCartModal    struct{}
	CloseCartModal   struct{}
	SetGlobalLoading struct{ Loading bool }

	// ShowToast shows Message; an empty Type means info.
	ShowToast struct {
		Message string
		Type    string
	}

	HideToast struct{}
)

func (OpenCartModal) uiAction()    {}
func (CloseCartModal) uiAction()   {}
func (SetGlobalLoading) uiAction() {}
func (ShowToast) uiAction()        {}
func (HideToast) uiAction()        {}

// ReduceUI is the UI store reducer. Every field is a value, so a no-op
// action yields an identical state.
func ReduceUI(s UIState, a UIAction) UIState {
	switch a := a.(type) {
	case OpenCartModal:
		s.CartModalOpen = true
	case CloseCartModal:
		s.CartModalOpen = false
	case SetGlobalLoading:
		s.GlobalLoading = a.Loading
	case ShowToast:
		kind := a.Type
		if kind == "" {
			kind = ToastInfo
		}
		s.Toast = Toast{Visible: true, Message: a.Message, Type: kind}
	case HideToast:
		s.Toast.Visible = false
	}
	return s
}

// UIStore is the UI store type.
type UIStore = store.Store[UIState, UIAction]

// NewUIStore creates a UI store in its initial state.
func NewUIStore(opts ...store.Option) *UIStore {
	opts = append([]store.Option{store.WithName("ui")}, opts...)
	return store.New(ReduceUI, InitialUIState(), opts...)
}
