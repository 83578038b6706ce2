package minerva

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	fakeList          = `<html><body>View All Requests<br>Select Document or Request</body></html>`
	fakeDetail        = `<html><body>Expense details<input type="button" value="Return to Previous"></body></html>`
	fakeSearchResults = `<html><body>Search Results<p>Displaying 0 entries</p></body></html>`
	fakeNoExact       = `<html><body>Search Results<p>Your search results returned no exact matches.</p></body></html>`
	fakeUnknownOption = `<html><body>*ERROR* Unknown option.</body></html>`
	fakeParentMenu    = `<html><body>Advances and Expense Reports Menu</body></html>`
	fakeGarbage       = `<html><body><p>loading...</p></body></html>`
)

// fakeSession scripts page content transitions off navigation action
// counts so driver behavior is fully deterministic.
type fakeSession struct {
	current string

	backs     int
	forwards  int
	reloads   int
	resubmits int
	rowClicks int

	onBack     func(n int) string
	onForward  func(n int) string
	onReload   func(n int) string
	onResubmit func(n int) string
}

func (s *fakeSession) HTML(ctx context.Context) (string, error) {
	return s.current, nil
}

func (s *fakeSession) URL(ctx context.Context) (string, error) {
	return "https://minerva.test/page", nil
}

func (s *fakeSession) Back(ctx context.Context) error {
	s.backs++
	if s.onBack != nil {
		s.current = s.onBack(s.backs)
	}
	return nil
}

func (s *fakeSession) Forward(ctx context.Context) error {
	s.forwards++
	if s.onForward != nil {
		s.current = s.onForward(s.forwards)
	}
	return nil
}

func (s *fakeSession) Reload(ctx context.Context) error {
	s.reloads++
	if s.onReload != nil {
		s.current = s.onReload(s.reloads)
	}
	return nil
}

func (s *fakeSession) ClickRow(ctx context.Context, index int) error {
	s.rowClicks++
	return nil
}

func (s *fakeSession) ClickResubmit(ctx context.Context) (bool, error) {
	if s.onResubmit == nil {
		return false, nil
	}
	s.resubmits++
	s.current = s.onResubmit(s.resubmits)
	return true, nil
}

func (s *fakeSession) WaitLoaded(ctx context.Context) {}

func (s *fakeSession) WaitRowActivated(ctx context.Context, prevURL string) bool {
	return true
}

func testDriver(session Session, maxAttempts int) Driver {
	return NewDriver(session, DriverOptions{
		Markers:       DefaultMarkers(),
		MaxAttempts:   maxAttempts,
		SettleTimeout: time.Millisecond * 20,
		PollInterval:  time.Millisecond * 2,
	})
}

func TestRecoverAlreadyOnList(t *testing.T) {
	session := &fakeSession{current: fakeList}
	driver := testDriver(session, 5)

	require.True(t, driver.Recover(context.Background()))
	require.Equal(t, 0, session.backs)
	require.Equal(t, 0, session.forwards)
	require.Equal(t, 0, session.reloads)
	require.Equal(t, 0, session.resubmits)
}

func TestRecoverUnknownOptionEscalation(t *testing.T) {
	// the first back/resubmit round leaves the error page in place,
	// the second one lands back on the list
	session := &fakeSession{
		current: fakeUnknownOption,
		onResubmit: func(n int) string {
			if n >= 2 {
				return fakeList
			}
			return fakeUnknownOption
		},
	}
	driver := testDriver(session, 5)

	require.True(t, driver.Recover(context.Background()))
	require.Equal(t, 2, session.backs)
	require.Equal(t, 2, session.resubmits)
	require.Equal(t, 0, session.forwards)
	require.Equal(t, 0, session.reloads)
}

func TestRecoverSearchResultsResubmit(t *testing.T) {
	session := &fakeSession{
		current: fakeSearchResults,
		onBack: func(n int) string {
			return fakeSearchResults
		},
		onResubmit: func(n int) string {
			return fakeList
		},
	}
	driver := testDriver(session, 5)

	require.True(t, driver.Recover(context.Background()))
	require.Equal(t, 1, session.backs)
	require.Equal(t, 1, session.resubmits)
}

func TestRecoverNoExactMatchesBacksOutOnly(t *testing.T) {
	session := &fakeSession{
		current: fakeNoExact,
		onBack: func(n int) string {
			return fakeList
		},
		onResubmit: func(n int) string {
			t.Fatal("resubmission must not be attempted from the no-exact-matches page")
			return ""
		},
	}
	driver := testDriver(session, 5)

	require.True(t, driver.Recover(context.Background()))
	require.Equal(t, 1, session.backs)
	require.Equal(t, 0, session.resubmits)
}

func TestRecoverParentMenuGoesForward(t *testing.T) {
	session := &fakeSession{
		current: fakeParentMenu,
		onForward: func(n int) string {
			return fakeList
		},
	}
	driver := testDriver(session, 5)

	require.True(t, driver.Recover(context.Background()))
	require.Equal(t, 1, session.forwards)
	require.Equal(t, 0, session.backs)
}

func TestRecoverDetailBacksOut(t *testing.T) {
	session := &fakeSession{
		current: fakeDetail,
		onBack: func(n int) string {
			return fakeList
		},
	}
	driver := testDriver(session, 5)

	require.True(t, driver.Recover(context.Background()))
	require.Equal(t, 1, session.backs)
}

func TestRecoverFailureExhaustsBudget(t *testing.T) {
	session := &fakeSession{current: fakeGarbage}
	driver := testDriver(session, 3)

	require.False(t, driver.Recover(context.Background()))
	require.Equal(t, 3, session.backs)
	require.Equal(t, 1, session.reloads)
	require.Equal(t, 0, session.forwards)
	require.Equal(t, 0, session.resubmits)
}

func TestRecoverFallbackReloadSucceeds(t *testing.T) {
	session := &fakeSession{
		current: fakeGarbage,
		onReload: func(n int) string {
			return fakeList
		},
	}
	driver := testDriver(session, 3)

	require.True(t, driver.Recover(context.Background()))
	require.Equal(t, 3, session.backs)
	require.Equal(t, 1, session.reloads)
}

func TestRecoverAcceptsVisibleRowsAsSuccess(t *testing.T) {
	// rows rendered but the title markers absent, list still counts
	// as reached
	rowsOnly := `<html><body>
		<table><tr>
			<td><input type="button" value="View"></td>
			<td class="dddefault">X</td>
		</tr></table>
	</body></html>`
	session := &fakeSession{
		current: fakeSearchResults,
		onBack: func(n int) string {
			return rowsOnly
		},
	}
	driver := testDriver(session, 5)

	require.True(t, driver.Recover(context.Background()))
	require.Equal(t, 1, session.backs)
}
