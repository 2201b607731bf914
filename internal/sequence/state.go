// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sequence

// State is a sequence's own lifecycle position, exposed for progress
// reporting and tests; it is not part of the persisted report.
type State string

const (
	Idle              State = "idle"
	Starting          State = "starting"
	RunningSelected   State = "running_selected"
	RunningDiscarded  State = "running_discarded"
	RunningDrafted    State = "running_drafted"
	Ingesting         State = "ingesting"
	Reporting         State = "reporting"
	Done              State = "done"
)
