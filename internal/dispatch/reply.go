package dispatch

import (
	"errors"

	"github.com/SaadKaleem/redust/internal/command"
	"github.com/SaadKaleem/redust/internal/rerr"
	"github.com/SaadKaleem/redust/internal/resp"
	"github.com/SaadKaleem/redust/internal/store"
)

// execute runs cmd against st and shapes the result into a reply Frame.
// Store-level typed errors and command-parse errors both arrive as
// *rerr.Error and are rendered identically: an Error frame carrying the
// error's text.
func execute(cmd *command.Command, st *store.Store) *resp.Frame {
	switch cmd.Kind {
	case command.KindPing:
		if cmd.HasMsg {
			return resp.NewSimpleString(cmd.Message)
		}
		return resp.NewSimpleString("PONG")

	case command.KindEcho:
		return resp.NewSimpleString(cmd.Message)

	case command.KindSet:
		return executeSet(cmd, st)

	case command.KindGet:
		v, ok := st.Get(cmd.Key)
		if !ok || v.Kind != store.KindString {
			return resp.NullBulk()
		}
		return resp.NewBulkString(v.Str)

	case command.KindExists:
		return resp.NewInteger(int64(st.Exists(cmd.Keys...)))

	case command.KindDel:
		return resp.NewInteger(int64(st.Del(cmd.Keys...)))

	case command.KindIncr:
		return intOrErr(st.Incr(cmd.Key, 1))

	case command.KindDecr:
		return intOrErr(st.Incr(cmd.Key, -1))

	case command.KindLPush:
		return intOrErr(st.LPush(cmd.Key, cmd.Elems...))

	case command.KindRPush:
		return intOrErr(st.RPush(cmd.Key, cmd.Elems...))

	case command.KindLRange:
		return lrangeReply(cmd, st)

	default:
		return resp.NewError(rerr.Unrecognized("ERR unknown command").Error())
	}
}

// executeSet applies SET and shapes its reply, including the GET-flag
// fallback: when the prior value wasn't a string (or there was none), GET
// yields the null bulk rather than the raw prior value, so GET here always
// means "bulk string or null".
func executeSet(cmd *command.Command, st *store.Store) *resp.Frame {
	val := store.StringValue(cmd.Value)
	opts := store.SetOptions{NX: cmd.NX, XX: cmd.XX, TTL: cmd.TTL}

	prev, existed, err := st.Set(cmd.Key, val, opts)
	if err != nil {
		return errToFrame(err)
	}

	if cmd.Get {
		if !existed || prev.Kind != store.KindString {
			return resp.NullBulk()
		}
		return resp.NewBulkString(prev.Str)
	}

	return resp.NewSimpleString("OK")
}

func lrangeReply(cmd *command.Command, st *store.Store) *resp.Frame {
	items, err := st.LRange(cmd.Key, cmd.Start, cmd.Stop)
	if err != nil {
		return errToFrame(err)
	}

	frames := make([]resp.Frame, len(items))
	for i, s := range items {
		frames[i] = *resp.NewBulkString(s)
	}
	return resp.NewArray(frames)
}

func intOrErr(n int64, err error) *resp.Frame {
	if err != nil {
		return errToFrame(err)
	}
	return resp.NewInteger(n)
}

func errToFrame(err error) *resp.Frame {
	var rerrErr *rerr.Error
	if errors.As(err, &rerrErr) {
		return resp.NewError(rerrErr.Msg)
	}
	return resp.NewError(err.Error())
}
