package catalog_repo

import (
	"showalert/internal/domain/show"
	"showalert/internal/infrastructure/storage/postgres"
)

const showTable = "show"

var _ show.Repository = (*ShowRepo)(nil)

// ShowRepo implements show.Repository. view_count is owned by the view
// counter and never written by an admin update.
type ShowRepo struct {
	*BaseRepo[*show.Show]
}

// NewShowRepo creates a new show repository.
func NewShowRepo(db postgres.QuerierProvider) *ShowRepo {
	return &ShowRepo{
		BaseRepo: NewBaseRepo[*show.Show](
			db,
			showTable,
			postgres.ExtractDBColumns[show.Show](),
			func() *show.Show { return &show.Show{} },
			"view_count",
		),
	}
}
