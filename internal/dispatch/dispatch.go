// Package dispatch implements the per-connection read-parse-execute-reply
// loop and the mapping from command results to wire frames.
package dispatch

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SaadKaleem/redust/internal/command"
	"github.com/SaadKaleem/redust/internal/rerr"
	"github.com/SaadKaleem/redust/internal/resp"
	"github.com/SaadKaleem/redust/internal/respconn"
	"github.com/SaadKaleem/redust/internal/store"
)

// Handle drives one connection to completion: read a frame, parse it into
// a command, execute it against st, write the reply, repeat. It returns
// once the connection closes cleanly or hits an unrecoverable I/O error;
// command-parse and command errors are written back as Error frames and
// do not end the loop. A malformed frame (resp.ErrProtocol from
// ReadFrame) also ends the loop, and no Error frame is written for it.
func Handle(conn *respconn.Conn, st *store.Store, logger zerolog.Logger) {
	connID := uuid.New().String()
	log := logger.With().Str("conn_id", connID).Str("remote_addr", conn.RemoteAddr().String()).Logger()
	log.Info().Msg("connection accepted")

	defer func() {
		conn.Close()
		log.Info().Msg("connection closed")
	}()

	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			if errors.Is(err, respconn.ErrConnectionReset) {
				log.Warn().Err(err).Msg("connection reset by peer")
			} else {
				log.Error().Err(err).Msg("read error")
			}
			return
		}
		if frame == nil {
			return
		}

		cmd, err := command.Parse(frame)
		if err != nil {
			if writeErr := writeError(conn, err); writeErr != nil {
				log.Error().Err(writeErr).Msg("write error")
				return
			}
			continue
		}

		reply := execute(cmd, st)
		if err := conn.WriteFrame(reply); err != nil {
			log.Error().Err(err).Msg("write error")
			return
		}
	}
}

func writeError(conn *respconn.Conn, err error) error {
	var rerrErr *rerr.Error
	msg := err.Error()
	if errors.As(err, &rerrErr) {
		msg = rerrErr.Msg
	}
	return conn.WriteFrame(resp.NewError(msg))
}
