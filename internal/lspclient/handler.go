package lspclient

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sourcegraph/jsonrpc2"
)

// notificationHandler services the handful of server-to-client notifications
// and requests the gateway cares about: window/logMessage, $/progress,
// textDocument/publishDiagnostics, and the experimental server-status
// notification some servers (gopls) send in place of a $/progress "done".
// Everything else is acknowledged as a no-op, since the gateway never drives
// a text editor and therefore never needs to act on diagnostics or progress
// beyond logging them.
type notificationHandler struct {
	lang string
}

func (h notificationHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Notif {
		switch req.Method {
		case "window/logMessage", "window/showMessage":
			var params struct {
				Type    int    `json:"type"`
				Message string `json:"message"`
			}
			if req.Params != nil {
				_ = json.Unmarshal(*req.Params, &params)
			}
			log.Printf("lsp[%s]: %s", h.lang, params.Message)
		case "$/progress", "experimental/serverStatus":
			// Progress reporting has no observer in this gateway; these
			// notifications are swallowed without logging.
		case "textDocument/publishDiagnostics":
			// The gateway never surfaces diagnostics; language servers are
			// used purely for navigation.
		default:
			log.Printf("lsp[%s]: unhandled notification %s", h.lang, req.Method)
		}
		return
	}

	// Server-to-client requests we don't support (workspace/configuration,
	// window/workDoneProgress/create, client/registerCapability, ...) are
	// answered with an empty/nil result rather than left to time out, so a
	// picky server doesn't stall waiting for a reply.
	if err := conn.Reply(ctx, req.ID, nil); err != nil {
		log.Printf("lsp[%s]: reply to %s: %v", h.lang, req.Method, err)
	}
}

// NewNotificationHandler returns the jsonrpc2.Handler a Process should be
// started with for the given language.
func NewNotificationHandler(lang string) jsonrpc2.Handler {
	return notificationHandler{lang: lang}
}
