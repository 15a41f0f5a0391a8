// This file is part of Quiesce.
//
// Quiesce is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Quiesce is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Quiesce.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/jetsetilly/quiesce/bootloader"
	"github.com/jetsetilly/quiesce/curated"
	"github.com/jetsetilly/quiesce/govern"
	"github.com/jetsetilly/quiesce/logger"
	"github.com/jetsetilly/quiesce/paths"
	"github.com/jetsetilly/quiesce/performance"
	"github.com/jetsetilly/quiesce/remote"
	"github.com/jetsetilly/quiesce/session"
	"github.com/jetsetilly/quiesce/statsview"
	"github.com/jetsetilly/quiesce/termctl"
	"github.com/jetsetilly/quiesce/version"
	"github.com/spf13/cobra"
)

// options for the run command
type runOptions struct {
	prefsFile   string
	dual        bool
	bootToPause bool
	fps         float64
	backend     string
	wav         string
	stream      string
	remote      string
	statsview   bool
	log         bool
	dumpGraph   string
	cpuProfile  string
	memProfile  string
	tty         string
	noTerm      bool
	duration    time.Duration
}

// #mainthread
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(10)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quiesce",
		Short:        "Emulator session runner",
		SilenceUsage: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newRunCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Describe())
		},
	}
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Boot an image and run the emulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return performance.RunProfiler(performance.Profile{
				CPU: opts.cpuProfile,
				Mem: opts.memProfile,
			}, func() error {
				return run(cmd, opts, args[0])
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.prefsFile, "prefs", paths.ResourcePath("quiesce.yaml"), "preferences file. empty string for no preferences file")
	f.BoolVar(&opts.dual, "dual", true, "run the CPU in its own goroutine")
	f.BoolVar(&opts.bootToPause, "boot-to-pause", false, "pause the emulation once it has started")
	f.Float64Var(&opts.fps, "fps", 60.0, "frame rate limit")
	f.StringVar(&opts.backend, "backend", "software", "video backend (software or null)")
	f.StringVar(&opts.wav, "wav", "", "record audio to WAV file")
	f.StringVar(&opts.stream, "stream", "", "MP3 file to mix with the audio")
	f.StringVar(&opts.remote, "remote", "", "address for the remote control server")
	f.BoolVar(&opts.statsview, "statsview", false, "launch the runtime statistics server")
	f.BoolVar(&opts.log, "log", false, "echo log to stdout")
	f.StringVar(&opts.dumpGraph, "dumpgraph", "", "write a graph of the machine to file once the emulation has started")
	f.StringVar(&opts.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	f.StringVar(&opts.memProfile, "memprofile", "", "write memory profile to file")
	f.StringVar(&opts.tty, "tty", termctl.DefaultDevice, "terminal device for key control")
	f.BoolVar(&opts.noTerm, "noterm", false, "do not use the terminal for key control")
	f.DurationVar(&opts.duration, "duration", 0, "stop the emulation after the duration")

	return cmd
}

// applyFlags changes the preferences for every flag that was set on the
// command line. flags that were not set do not change the preferences file
// values
func applyFlags(cmd *cobra.Command, opts runOptions, p *session.Preferences) error {
	f := cmd.Flags()

	type binding struct {
		flag  string
		apply func() error
	}

	for _, b := range []binding{
		{"dual", func() error { return p.DualThread.Set(opts.dual) }},
		{"boot-to-pause", func() error { return p.BootToPause.Set(opts.bootToPause) }},
		{"fps", func() error { return p.FPSLimit.Set(opts.fps) }},
		{"backend", func() error { return p.VideoBackend.Set(opts.backend) }},
		{"wav", func() error { return p.WavFile.Set(opts.wav) }},
		{"stream", func() error { return p.StreamFile.Set(opts.stream) }},
	} {
		if !f.Changed(b.flag) {
			continue
		}
		if err := b.apply(); err != nil {
			return curated.Errorf("%s: %v", b.flag, err)
		}
	}

	return nil
}

// run the emulation. the calling goroutine becomes the host goroutine and
// the function returns once the emulation has stopped
func run(cmd *cobra.Command, opts runOptions, filename string) error {
	out := cmd.OutOrStdout()

	if opts.log {
		logger.SetEcho(out, true)
		defer logger.SetEcho(nil, false)
	}

	if opts.statsview {
		statsview.Launch(out)
	}

	p, err := session.NewPreferences(opts.prefsFile)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, opts, p); err != nil {
		return err
	}

	ld := bootloader.NewLoader(filename)
	if err := ld.Load(); err != nil {
		return err
	}

	host := session.NewChannelHost()
	host.OnMessage = func(msg string, _ time.Duration) {
		fmt.Fprintln(out, msg)
	}

	sess := session.NewSession(host, p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the host loop ends when the emulation stops
	host.OnStopped = cancel

	if opts.remote != "" {
		srv := remote.NewServer(sess)
		if err := srv.Start(opts.remote); err != nil {
			return err
		}
		defer srv.Shutdown(context.Background())
		fmt.Fprintf(out, "remote control at http://%s/session\n", srv.Addr())
	}

	if opts.dumpGraph != "" {
		dumpGraphOnStart(sess, opts.dumpGraph)
	}

	// interrupt stops the emulation
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	defer signal.Stop(intChan)
	go func() {
		select {
		case <-intChan:
			sess.QueueHostJob(sess.Stop, true)
		case <-ctx.Done():
		}
	}()

	if opts.duration > 0 {
		t := time.AfterFunc(opts.duration, func() {
			sess.QueueHostJob(sess.Stop, true)
		})
		defer t.Stop()
	}

	if !opts.noTerm {
		tty, err := termctl.Open(opts.tty)
		if err != nil {
			logger.Logf(logger.Allow, "quiesce", "no key control: %v", err)
		} else {
			defer tty.Close()
			ctl := termctl.NewController(sess)
			go func() {
				if err := ctl.Serve(ctx, tty); err != nil {
					logger.Log(logger.Allow, "quiesce", err)
				}
			}()
			fmt.Fprintln(out, "keys: (p)ause (f)rame step (t)hrottle (q)uit")
		}
	}

	if err := sess.Init(session.Boot{Name: ld.ShortName(), Image: ld.Data}); err != nil {
		return err
	}

	host.Serve(ctx, sess)
	sess.Shutdown()

	fmt.Fprintf(out, "%s: %d frames in %v\n", ld.ShortName(), sess.Metrics().Frames(),
		sess.ElapsedTime().Round(time.Millisecond))

	return nil
}

// dumpGraphOnStart writes the graph of the machine to the file the first time
// the emulation is running or paused
func dumpGraphOnStart(sess *session.Session, filename string) {
	var once sync.Once
	sess.Subscribe(func(st govern.State) {
		if st != govern.Running && st != govern.Paused {
			return
		}
		once.Do(func() {
			go func() {
				if err := writeGraph(sess, filename); err != nil {
					logger.Log(logger.Allow, "quiesce", err)
				}
			}()
		})
	})
}

func writeGraph(sess *session.Session, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return curated.Errorf("dumpgraph: %v", err)
	}
	defer f.Close()
	return sess.DumpGraph(f)
}
