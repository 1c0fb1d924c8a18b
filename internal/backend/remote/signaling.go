package remote

import (
	"encoding/json"
	"net/http"

	"github.com/pion/webrtc/v4"
	"github.com/pkg/errors"

	"github.com/char5742/inputcore/internal/logging"
)

// Signaler は HTTP で SDP のオファーを受け取って応答し、
// 相手が開いた DataChannel を Session に渡す。
// ICE の候補はすべて SDP に含めて交換する（trickle ICE は使わない）。
type Signaler struct {
	session *Session
	api     *webrtc.API
	config  webrtc.Configuration
	logger  logging.Logger
}

// NewSignaler は Signaler を作る。api が nil なら既定の設定を使う。
func NewSignaler(session *Session, api *webrtc.API, config webrtc.Configuration, logger logging.Logger) *Signaler {
	if api == nil {
		api = webrtc.NewAPI()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Signaler{session: session, api: api, config: config, logger: logger}
}

// ServeHTTP は POST されたオファー (webrtc.SessionDescription の JSON) にアンサーを返す
func (s *Signaler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.session.Busy() {
		http.Error(w, ErrBusy.Error(), http.StatusConflict)
		return
	}
	var offer webrtc.SessionDescription
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		http.Error(w, "不正なオファーです: "+err.Error(), http.StatusBadRequest)
		return
	}

	answer, err := s.answer(r, offer)
	if err != nil {
		s.logger.Warnw("オファーに応答できませんでした", "remote", r.RemoteAddr, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(answer)
}

func (s *Signaler) answer(r *http.Request, offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	pc, err := s.api.NewPeerConnection(s.config)
	if err != nil {
		return nil, errors.Wrap(err, "peer connection")
	}

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		t := NewDataChannelTransport(dc)
		if err := s.session.Offer(t); err != nil {
			s.logger.Infow("DataChannel を拒否しました", "label", dc.Label(), "error", err)
			_ = pc.Close()
			return
		}
		s.logger.Infow("送信側が接続しました", "remote", r.RemoteAddr, "label", dc.Label())
	})
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		switch state {
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateDisconnected:
			_ = pc.Close()
		}
	})

	fail := func(err error, what string) (*webrtc.SessionDescription, error) {
		_ = pc.Close()
		return nil, errors.Wrap(err, what)
	}
	if err := pc.SetRemoteDescription(offer); err != nil {
		return fail(err, "set remote description")
	}
	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		return fail(err, "create answer")
	}
	gathered := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(answer); err != nil {
		return fail(err, "set local description")
	}
	select {
	case <-gathered:
	case <-r.Context().Done():
		return fail(r.Context().Err(), "ICE gathering")
	}
	return pc.LocalDescription(), nil
}
