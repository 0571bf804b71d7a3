// Package logger routes slotdb events into zap or logrus.
//
// Events carry the data file path and page numbers as fields, e.g.
// "page evicted from cache" page=17 or "flush failed" path=orders.sdb
// error=... . Creating a data file with a zap adapter:
//
//	zl, _ := zap.NewProduction()
//	db, err := slotdb.Create("orders.sdb",
//	    slotdb.WithLogger(logger.NewZap(zl)),
//	    slotdb.WithFileSize(256*slotdb.PageSize),
//	)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	page, err := db.AllocatePage(slotdb.PageTypeData)
package logger
