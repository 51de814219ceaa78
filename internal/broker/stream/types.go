package stream

import (
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"tdbot/internal/logger"
	"tdbot/internal/models"
)

type State string

const (
	StateDisconnected     State = "Disconnected"
	StateConnecting       State = "Connecting"
	StateAwaitingLoginAck State = "AwaitingLoginAck"
	StateReady            State = "Ready"
	StateClosing          State = "Closing"
	StateClosed           State = "Closed"
)

type Principal struct {
	AccountID       string
	AppID           string
	Token           string
	SubscriptionKey string
}

type Session struct {
	url         string
	principal   Principal
	credentials url.Values
	log         *logger.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	events chan models.OrderEvent

	mu         sync.Mutex
	state      State
	batch      []request
	sentCount  int
	unsubCount int
	pending    map[string]chan responseItem

	loginCh  chan responseItem
	stopCh   chan struct{}
	stopOnce sync.Once
}

type request struct {
	Service    string            `json:"service"`
	RequestID  string            `json:"requestid"`
	Command    string            `json:"command"`
	Account    string            `json:"account"`
	Source     string            `json:"source"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type envelope struct {
	Requests []request `json:"requests"`
}

type responseItem struct {
	Service   string `json:"service"`
	RequestID string `json:"requestid"`
	Command   string `json:"command"`
	Content   struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"content"`
}

type dataBlock struct {
	Service   string           `json:"service"`
	Timestamp int64            `json:"timestamp"`
	Content   []activityRecord `json:"content"`
}

// Номерные поля записи ACCT_ACTIVITY: "1" аккаунт, "2" вид активности,
// "3" XML с деталями ордера.
type activityRecord struct {
	Seq      int    `json:"seq"`
	Key      string `json:"key"`
	Account  string `json:"1"`
	Activity string `json:"2"`
	Payload  string `json:"3"`
}

type frame struct {
	Response []responseItem `json:"response"`
	Data     []dataBlock    `json:"data"`
}
