// Package live runs storefront pages for a browser over a websocket.
//
// A session is the client side of the runtime held on the server: a
// client router over an in-memory history, the stores and a scheduler
// loop. The browser sends user intents as JSON messages; every change to a
// store or the router schedules one batched render whose HTML is sent
// back.
//
// Messages from the browser:
//
//	{"type":"hello","url":"/?search=젤리","data":{...}}
//	{"type":"navigate","url":"/product/85067212996/"}
//	{"type":"back"}
//	{"type":"forward"}
//	{"type":"query","query":{"sort":"price_desc"}}
//	{"type":"products","op":"search","value":"젤리"}
//	{"type":"cart","op":"add","productId":"85067212996","quantity":1}
//	{"type":"ui","op":"open-cart"}
//
// Messages to the browser:
//
//	{"type":"render","url":"/","html":"..."}
//	{"type":"error","code":"SF062","message":"..."}
//
// The hello message must come first. Its data is the initial data the
// server render embedded in the page.
package live
