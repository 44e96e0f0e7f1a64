// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package playback

import (
	"fmt"
	"math"
)

// FormatTime renders a number of seconds as "M:SS". Minutes are neither
// padded nor capped, so one hour renders as "60:00". Negative, NaN and
// infinite input renders as "0:00".
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	minutes := math.Floor(seconds / 60)
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%.0f:%02d", minutes, secs)
}

// FormatProgress renders the "elapsed / total" label shown next to the
// play button.
func FormatProgress(position, duration float64) string {
	return FormatTime(position) + " / " + FormatTime(duration)
}
