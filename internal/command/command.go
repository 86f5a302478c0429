// Package command lifts a decoded request Frame into a typed Command,
// validating arity and, for SET, its option grammar.
package command

import (
	"strconv"
	"strings"
	"time"

	"github.com/SaadKaleem/redust/internal/rerr"
	"github.com/SaadKaleem/redust/internal/resp"
)

// Kind identifies which command a Command value holds.
type Kind int

const (
	KindPing Kind = iota
	KindEcho
	KindSet
	KindGet
	KindExists
	KindDel
	KindIncr
	KindDecr
	KindLPush
	KindRPush
	KindLRange
)

// Command is the tagged union over every supported request. Only the
// fields relevant to Kind are populated.
type Command struct {
	Kind Kind

	// Ping / Echo
	Message string // Ping's optional message, or Echo's required one
	HasMsg  bool    // Ping only: whether a message argument was given

	// Set / Get / Incr / Decr
	Key   string
	Value string // Set's value

	// Set options
	NX     bool
	XX     bool
	Get    bool
	TTL    *time.Duration

	// Exists / Del
	Keys []string

	// LPush / RPush
	Elems []string

	// LRange
	Start int64
	Stop  int64
}

// Parse lifts frame (which must be an Array of string-bearing elements)
// into a Command, dispatching on the first element case-insensitively.
func Parse(frame *resp.Frame) (*Command, error) {
	args, err := extractStrings(frame)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, rerr.Unrecognized("ERR unknown command ''")
	}

	name := strings.ToUpper(args[0])
	rest := args[1:]

	switch name {
	case "PING":
		return parsePing(rest)
	case "ECHO":
		return parseEcho(rest)
	case "SET":
		return parseSet(rest)
	case "GET":
		return parseGet(rest)
	case "EXISTS":
		return parseExists(rest)
	case "DEL":
		return parseDel(rest)
	case "INCR":
		return parseIncr(rest)
	case "DECR":
		return parseDecr(rest)
	case "LPUSH":
		return parseLPush(rest)
	case "RPUSH":
		return parseRPush(rest)
	case "LRANGE":
		return parseLRange(rest)
	default:
		return nil, rerr.Unrecognized("ERR unknown command '" + args[0] + "'")
	}
}

// extractStrings requires frame to be an Array whose every element is a
// SimpleString or non-null BulkString, and returns their text contents.
func extractStrings(frame *resp.Frame) ([]string, error) {
	if frame.Kind != resp.KindArray {
		return nil, rerr.ExpectedArray("ERR expected array")
	}

	out := make([]string, 0, len(frame.Array))
	for i := range frame.Array {
		s, err := extractString(&frame.Array[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func extractString(f *resp.Frame) (string, error) {
	switch f.Kind {
	case resp.KindSimpleString:
		return f.Str, nil
	case resp.KindBulkString:
		if f.Bulk == nil {
			return "", rerr.ExpectedString("ERR expected string")
		}
		return *f.Bulk, nil
	default:
		return "", rerr.ExpectedString("ERR expected string")
	}
}

func arityErr(cmd string) error {
	return rerr.Syntaxf("ERR wrong number of arguments for '%s' command", cmd)
}

func parsePing(args []string) (*Command, error) {
	switch len(args) {
	case 0:
		return &Command{Kind: KindPing}, nil
	case 1:
		return &Command{Kind: KindPing, Message: args[0], HasMsg: true}, nil
	default:
		return nil, arityErr("ping")
	}
}

func parseEcho(args []string) (*Command, error) {
	if len(args) != 1 {
		return nil, arityErr("echo")
	}
	return &Command{Kind: KindEcho, Message: args[0]}, nil
}

func parseGet(args []string) (*Command, error) {
	if len(args) != 1 {
		return nil, arityErr("get")
	}
	return &Command{Kind: KindGet, Key: args[0]}, nil
}

func parseExists(args []string) (*Command, error) {
	if len(args) < 1 {
		return nil, arityErr("exists")
	}
	return &Command{Kind: KindExists, Keys: args}, nil
}

func parseDel(args []string) (*Command, error) {
	if len(args) < 1 {
		return nil, arityErr("del")
	}
	return &Command{Kind: KindDel, Keys: args}, nil
}

func parseIncr(args []string) (*Command, error) {
	if len(args) != 1 {
		return nil, arityErr("incr")
	}
	return &Command{Kind: KindIncr, Key: args[0]}, nil
}

func parseDecr(args []string) (*Command, error) {
	if len(args) != 1 {
		return nil, arityErr("decr")
	}
	return &Command{Kind: KindDecr, Key: args[0]}, nil
}

func parseLPush(args []string) (*Command, error) {
	if len(args) < 2 {
		return nil, arityErr("lpush")
	}
	return &Command{Kind: KindLPush, Key: args[0], Elems: args[1:]}, nil
}

func parseRPush(args []string) (*Command, error) {
	if len(args) < 2 {
		return nil, arityErr("rpush")
	}
	return &Command{Kind: KindRPush, Key: args[0], Elems: args[1:]}, nil
}

func parseLRange(args []string) (*Command, error) {
	if len(args) != 3 {
		return nil, arityErr("lrange")
	}
	start, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return nil, rerr.Syntaxf("ERR start index is not an integer")
	}
	stop, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return nil, rerr.Syntaxf("ERR stop index is not an integer")
	}
	return &Command{Kind: KindLRange, Key: args[0], Start: start, Stop: stop}, nil
}

// parseSet validates SET key val [NX|XX] [GET] [EX n|PX n|EXAT t|PXAT t].
func parseSet(args []string) (*Command, error) {
	if len(args) < 2 {
		return nil, arityErr("set")
	}

	cmd := &Command{Kind: KindSet, Key: args[0], Value: args[1]}
	hasExpiry := false

	rest := args[2:]
	for i := 0; i < len(rest); i++ {
		switch strings.ToUpper(rest[i]) {
		case "NX":
			if cmd.NX || cmd.XX {
				return nil, rerr.Syntaxf("ERR NX/XX syntax error")
			}
			cmd.NX = true
		case "XX":
			if cmd.NX || cmd.XX {
				return nil, rerr.Syntaxf("ERR NX/XX syntax error")
			}
			cmd.XX = true
		case "GET":
			if cmd.Get {
				return nil, rerr.Syntaxf("ERR syntax error")
			}
			cmd.Get = true
		case "EX", "PX", "EXAT", "PXAT":
			if hasExpiry {
				return nil, rerr.Syntaxf("ERR syntax error")
			}
			if i+1 >= len(rest) {
				return nil, rerr.Syntaxf("ERR syntax error")
			}
			n, err := strconv.ParseInt(rest[i+1], 10, 64)
			if err != nil {
				return nil, rerr.Syntaxf("ERR value is not an integer or out of range")
			}
			ttl, err := resolveExpiry(strings.ToUpper(rest[i]), n)
			if err != nil {
				return nil, err
			}
			cmd.TTL = &ttl
			hasExpiry = true
			i++
		default:
			// Unrecognized tokens are ignored rather than rejected.
		}
	}

	return cmd, nil
}

// resolveExpiry converts a SET expiry option and its argument into a
// duration relative to now; EXAT/PXAT give an absolute timestamp, which
// is converted to a relative duration at parse time so the rest of the
// pipeline only ever deals in durations.
func resolveExpiry(opt string, n int64) (time.Duration, error) {
	switch opt {
	case "EX":
		return time.Duration(n) * time.Second, nil
	case "PX":
		return time.Duration(n) * time.Millisecond, nil
	case "EXAT":
		target := time.Unix(n, 0)
		return time.Until(target), nil
	case "PXAT":
		target := time.UnixMilli(n)
		return time.Until(target), nil
	default:
		return 0, rerr.Syntaxf("ERR syntax error")
	}
}
