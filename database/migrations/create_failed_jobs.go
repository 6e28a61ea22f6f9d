package migrations

import (
	"github.com/tiffinbox/tiffin/pkg/migration"
	"github.com/tiffinbox/tiffin/pkg/queue"
)

func init() {
	migration.Register("20260101000900_create_failed_jobs_table", table{&queue.FailedJobRecord{}, "tiffin_failed_jobs"})
}
