package db

var ConstRoles = struct {
	Admin  int
	Artist int
	Client int
	API    int
}{
	Admin:  1,
	Artist: 2,
	Client: 3,
	API:    4,
}

// Order status values as stored in orders.status. Pending orders either become
// paid through webhook reconciliation or stay pending forever (abandoned
// checkout), which is a valid terminal state.
var ConstOrderStatuses = struct {
	Pending string
	Paid    string
}{
	Pending: "pending",
	Paid:    "paid",
}
