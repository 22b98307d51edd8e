// Package interpreter drives one command stream to completion against a
// Store: read a command, dispatch it, write its result, repeat until end
// of stream.
package interpreter

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/kvsd/pkg/command"
	"github.com/cuemby/kvsd/pkg/kvstore"
	"github.com/cuemby/kvsd/pkg/metrics"
)

// helpText is the fixed command summary emitted by HELP.
const helpText = "Available commands:\n" +
	"  WRITE [(key,value)(key2,value2),...]\n" +
	"  READ [key,key2,...]\n" +
	"  DELETE [key,key2,...]\n" +
	"  SHOW\n" +
	"  WAIT <delay_ms>\n" +
	"  BACKUP\n" +
	"  HELP\n"

// BackupRequester materializes a snapshot of a Snapshotter, bounded by
// the process-wide in-flight cap. It is satisfied by *snapshot.Manager.
type BackupRequester interface {
	Request(jobName string, maxBackups int, store kvstore.Snapshotter) error
}

// Waiter pauses the calling goroutine for delay, the same role
// time.Sleep plays in a production worker; a fake lets tests run WAIT
// without actually blocking.
type Waiter func(delay uint)

// Interpreter runs a command stream against a Store.
type Interpreter struct {
	Store       *kvstore.Store
	Backups     BackupRequester
	JobName     string
	MaxBackups  int
	Diagnostics zerolog.Logger
	Wait        Waiter
}

// Run consumes commands from in, writing command output to out, until
// EOC or a read error. Diagnostics (invalid commands, failed writes,
// failed backups, the WAIT notice) never go to out — they go to
// Diagnostics instead.
func (ip *Interpreter) Run(in io.Reader, out io.Writer) error {
	lexer := command.NewLexer(in)

	for {
		cmd, err := lexer.Next()
		if err != nil {
			return fmt.Errorf("interpreter: %w", err)
		}

		var ok bool
		switch cmd.Kind {
		case command.KindEOC:
			return nil
		case command.KindEmpty:
			continue
		case command.KindWrite:
			ok = ip.runWrite(cmd)
		case command.KindRead:
			ok = ip.runRead(cmd, out)
		case command.KindDelete:
			ok = ip.runDelete(cmd, out)
		case command.KindShow:
			ok = ip.runShow(out)
		case command.KindWait:
			ip.runWait(cmd)
			ok = true
		case command.KindBackup:
			ok = ip.runBackup()
		case command.KindHelp:
			ok = ip.runHelp(out)
		case command.KindInvalid:
			ip.Diagnostics.Warn().Msg("Invalid command. See HELP for usage")
		}
		metrics.CommandsTotal.WithLabelValues(cmd.Kind.String(), outcome(ok)).Inc()
	}
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

func (ip *Interpreter) runWrite(cmd command.Command) bool {
	ok := true
	for _, p := range cmd.Pairs {
		if err := ip.Store.Write(p.Key, p.Value); err != nil {
			ip.Diagnostics.Error().Err(err).Str("key", p.Key).Msg("failed to write pair")
			ok = false
		}
	}
	return ok
}

func (ip *Interpreter) runRead(cmd command.Command, out io.Writer) bool {
	pairs := kvstore.SortedRead(ip.Store, cmd.Keys)
	if _, err := io.WriteString(out, kvstore.FormatRead(pairs)); err != nil {
		ip.Diagnostics.Error().Err(err).Msg("failed to write read result")
		return false
	}
	return true
}

func (ip *Interpreter) runDelete(cmd command.Command, out io.Writer) bool {
	missing := kvstore.DeleteMissing(ip.Store, cmd.Keys)
	if line := kvstore.FormatMissing(missing); line != "" {
		if _, err := io.WriteString(out, line); err != nil {
			ip.Diagnostics.Error().Err(err).Msg("failed to write delete result")
			return false
		}
	}
	return true
}

func (ip *Interpreter) runShow(out io.Writer) bool {
	if err := ip.Store.Show(out); err != nil {
		ip.Diagnostics.Error().Err(err).Msg("failed to write show output")
		return false
	}
	return true
}

func (ip *Interpreter) runWait(cmd command.Command) {
	if cmd.DelayMs == 0 {
		return
	}
	ip.Diagnostics.Info().Msg("Waiting...")
	wait := ip.Wait
	if wait == nil {
		wait = defaultWait
	}
	wait(cmd.DelayMs)
}

// defaultWait blocks the calling goroutine for delay milliseconds. It is
// the Waiter used whenever an Interpreter does not supply its own (tests
// supply a fake to avoid actually sleeping).
func defaultWait(delay uint) {
	time.Sleep(time.Duration(delay) * time.Millisecond)
}

func (ip *Interpreter) runBackup() bool {
	if ip.Backups == nil {
		return true
	}
	if err := ip.Backups.Request(ip.JobName, ip.MaxBackups, ip.Store); err != nil {
		ip.Diagnostics.Error().Err(err).Msg("failed to perform backup")
		return false
	}
	return true
}

func (ip *Interpreter) runHelp(out io.Writer) bool {
	if _, err := io.WriteString(out, helpText); err != nil {
		ip.Diagnostics.Error().Err(err).Msg("failed to write help text")
		return false
	}
	return true
}
