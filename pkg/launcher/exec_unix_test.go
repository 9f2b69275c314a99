//go:build unix

package launcher

import (
	"context"
	"time"
)

// TestChildModeSignalStatus expects 128+SIGTERM when the child dies from the signal.
func (s *LauncherTestSuite) TestChildModeSignalStatus() {
	obs := newRecordingObserver()
	l := s.newHelperLauncher(helperOptions(ModeChild, "8501"), helperEnv("LAUNCHER_HELPER_BEHAVIOR=sleep"), WithObserver(obs))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-obs.started
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err := l.Run(ctx)
	s.Equal(143, ExitCode(err))
}
