/*
 * Copyright 2025 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package versions

// DefaultSnapshotInterval is the interval of sequences on which a version is
// marked as a snapshot without being asked to.
const DefaultSnapshotInterval = 10

// SnapshotPolicy decides whether a version is a snapshot. Every version
// stores its full content, so a snapshot is only a checkpoint marker.
type SnapshotPolicy struct {
	// Interval is the interval of sequences. Zero or less disables the
	// periodic snapshots.
	Interval int64
}

// ShouldSnapshot returns true if the version of the given sequence is a
// snapshot.
func (p SnapshotPolicy) ShouldSnapshot(seq int64, explicit bool) bool {
	if explicit {
		return true
	}

	return p.Interval > 0 && seq%p.Interval == 0
}

// ShouldSnapshot returns true if the snapshot is asked for or the sequence is
// a multiple of DefaultSnapshotInterval.
func ShouldSnapshot(seq int64, explicit bool) bool {
	return SnapshotPolicy{Interval: DefaultSnapshotInterval}.ShouldSnapshot(seq, explicit)
}
