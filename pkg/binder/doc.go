// Package binder fills typed request structs from HTTP requests.
//
// Each binder reads one source and only the fields tagged for it:
//
//	type SendMoneyForm struct {
//		ContactID int64  `path:"id"`
//		Amount    string `form:"amount"`
//		Currency  string `form:"currency"`
//		ReturnTo  string `query:"to"`
//	}
//
//	handler.Wrap(h, handler.WithBinders(
//		binder.Path(chi.URLParam),
//		binder.Query(),
//		binder.Form(),
//	))
//
// Supported field types are strings, signed and unsigned integers, floats,
// booleans and pointers to them. Failures wrap the package sentinels.
package binder
