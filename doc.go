// Package tableview implements the view-model of an interactive data table.
//
// A ViewModel owns an immutable slice of Record values and a list of Column
// definitions. Every state mutation (global search, column filters, sorting,
// pagination, column visibility) re-runs the pure Derive pipeline
//
//	records → global filter → column filters → stable sort → page window
//
// and stores the resulting Projection for a rendering layer to draw.
// ExportVisible returns all filtered and sorted rows restricted to the
// visible columns as a View that the exceltable and csvtable packages
// can write to a file. CurrentPage returns only the displayed page,
// for example to render it with the texttable package.
//
// Example:
//
//	vm, err := tableview.New(records, columns)
//	if err != nil {
//	    return err
//	}
//	vm.SetGlobalFilter("ali")
//	err = vm.SetColumnFilter("age", tableview.Between(18, 30))
//	if err != nil {
//	    return err
//	}
//	for _, row := range vm.Projection().Rows {
//	    fmt.Println(row.Record)
//	}
//	err = exceltable.NewWriter().WriteFile(ctx, "filtered_data.xlsx", vm.ExportVisible())
package tableview
