package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/xuede/Letta-MCP-server-sub002/jsonrpc"
)

// maxLineBytes bounds a single newline-delimited frame.
const maxLineBytes = 10 << 20

// Stdio serves newline-delimited JSON-RPC over a reader/writer pair with a
// single implicit session for the process lifetime. Diagnostics go to the
// server's logger (stderr), never to the output stream.
type Stdio struct {
	server *Server
	in     io.Reader
	out    io.Writer
}

// Stdio returns the transport bound to the process streams.
func (s *Server) Stdio() *Stdio {
	return NewStdio(s, os.Stdin, os.Stdout)
}

// NewStdio creates a stdio transport over arbitrary streams; tests pass
// buffers.
func NewStdio(server *Server, in io.Reader, out io.Writer) *Stdio {
	return &Stdio{server: server, in: in, out: out}
}

// Serve reads messages until EOF or context cancellation, dispatching each
// one in order. Responses are written back one JSON object per line. On a
// clean stop the output is flushed before returning nil.
func (t *Stdio) Serve(ctx context.Context) error {
	handler := t.server.NewHandler()
	writer := bufio.NewWriter(t.out)
	defer writer.Flush()

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errs <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := t.process(ctx, handler, writer, line); err != nil {
				return err
			}
		}
	}
}

// process handles one frame. Malformed frames are logged and skipped so a
// single bad line never takes the transport down.
func (t *Stdio) process(ctx context.Context, handler *Handler, writer *bufio.Writer, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	message, err := jsonrpc.ParseMessage([]byte(line))
	if err != nil {
		t.server.logger.Error("dropping malformed frame", "error", err)
		return nil
	}
	if message.IsNotification() {
		handler.OnNotification(ctx, message.Notification())
		return nil
	}
	request := message.Request()
	response := jsonrpc.NewResponse(request.Id)
	handler.Serve(ctx, request, response)

	payload, err := json.Marshal(response)
	if err != nil {
		t.server.logger.Error("marshal response", "error", err)
		return nil
	}
	if _, err := writer.Write(payload); err != nil {
		return err
	}
	if err := writer.WriteByte('\n'); err != nil {
		return err
	}
	return writer.Flush()
}
