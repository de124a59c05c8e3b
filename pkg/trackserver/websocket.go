package trackserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// fixesPerSecond and fixBurst bound how fast one connection's fixes are
// processed; handsets reporting faster than this are throttled rather than
// overrunning the particle update (each fix is an O(numParticles) step).
const (
	fixesPerSecond = 10
	fixBurst       = 5
)

type envelope map[string]interface{}

// handleWebsocket upgrades the connection and runs its session loop until
// the peer disconnects or sends a close frame. One goroutine per
// connection; no netpoll/epoll multiplexing layer (see DESIGN.md).
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		s.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	s.serveConn(r.Context(), conn)
}

func (s *Server) serveConn(ctx context.Context, conn io.ReadWriteCloser) {
	defer conn.Close()

	sess := s.tracker.newSession()
	limiter := rate.NewLimiter(rate.Limit(fixesPerSecond), fixBurst)
	validate := validator.New()

	for {
		data, op, err := wsutil.ReadClientData(conn)
		if err != nil {
			if err != io.EOF {
				s.log.Info("websocket read error", zap.Error(err))
			}
			return
		}
		if op == ws.OpClose {
			return
		}

		if err := limiter.Wait(ctx); err != nil {
			return
		}

		var req fixRequest
		if err := json.Unmarshal(data, &req); err != nil {
			s.writeError(conn, "malformed fix: "+err.Error())
			continue
		}
		if err := validate.Struct(req); err != nil {
			s.writeError(conn, translateValidationError(err))
			continue
		}

		resp, err := s.tracker.applyFix(ctx, sess, req)
		if err != nil {
			s.log.Warn("fix rejected", zap.Error(err))
			s.writeError(conn, err.Error())
			continue
		}
		if err := s.write(conn, envelope{"data": resp}); err != nil {
			s.log.Info("websocket write error", zap.Error(err))
			return
		}
	}
}

func (s *Server) write(conn io.Writer, x interface{}) error {
	wr := wsutil.NewWriter(conn, ws.StateServerSide, ws.OpText)
	enc := json.NewEncoder(wr)
	if err := enc.Encode(x); err != nil {
		return err
	}
	return wr.Flush()
}

func (s *Server) writeError(conn io.Writer, message string) {
	_ = s.write(conn, envelope{"error": map[string]string{
		"code":    http.StatusText(http.StatusBadRequest),
		"message": message,
	}})
}

func translateValidationError(err error) string {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validator.New(), trans)
	var msgs []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			msgs = append(msgs, e.Translate(trans))
		}
	} else {
		msgs = append(msgs, err.Error())
	}
	out := msgs[0]
	for _, m := range msgs[1:] {
		out += "; " + m
	}
	return out
}
