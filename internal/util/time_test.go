package util

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTimeProvider(t *testing.T) {
	mu.Lock()
	globalTimeProvider = nil
	mu.Unlock()

	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "local timezone", timezone: "Local"},
		{name: "UTC timezone", timezone: "UTC"},
		{name: "valid timezone Asia/Shanghai", timezone: "Asia/Shanghai"},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
		{name: "empty timezone defaults to Local", timezone: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitializeTimeProvider(tt.timezone)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid timezone")
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, GetTimeProvider())
			}
		})
	}
}

func TestGetTimeProvider(t *testing.T) {
	mu.Lock()
	globalTimeProvider = nil
	mu.Unlock()

	provider := GetTimeProvider()
	assert.NotNil(t, provider)
	assert.Same(t, provider, GetTimeProvider())
}

func TestTimeProvider_Today(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		instant  time.Time
		want     time.Time
	}{
		{
			name:     "utc_midday",
			timezone: "UTC",
			instant:  time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
			want:     time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "shanghai_rolls_to_next_day",
			timezone: "Asia/Shanghai",
			instant:  time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC),
			want:     time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "new_york_stays_on_previous_day",
			timezone: "America/New_York",
			instant:  time.Date(2024, 6, 15, 2, 0, 0, 0, time.UTC),
			want:     time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewTimeProvider(tt.timezone, &tt.instant)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(provider.Today()), "got %s", provider.Today())
		})
	}
}

func TestTimeProvider_PinAndUnpin(t *testing.T) {
	provider, err := NewTimeProvider("UTC", nil)
	require.NoError(t, err)

	fixed := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	provider.Pin(fixed)
	assert.True(t, fixed.Equal(provider.Now()))

	provider.Unpin()
	assert.WithinDuration(t, time.Now(), provider.Now(), time.Minute)
}

func TestTimeProvider_Format(t *testing.T) {
	provider, err := NewTimeProvider("UTC", nil)
	require.NoError(t, err)

	testTime := time.Date(2024, 3, 15, 14, 30, 45, 0, time.UTC)
	assert.Equal(t, "2024-03-15", provider.Format(testTime, DateLayout))
	assert.Equal(t, "Mar 2024", provider.Format(testTime, MonthLabel))
}

func TestTimeProvider_Concurrency(t *testing.T) {
	provider, err := NewTimeProvider("UTC", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = provider.Today()
		}()
		go func(i int) {
			defer wg.Done()
			provider.Pin(time.Date(2024, 1, 1+i%28, 0, 0, 0, 0, time.UTC))
		}(i)
	}
	wg.Wait()
}
