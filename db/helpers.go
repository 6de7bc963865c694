package db

import (
	"fmt"
	"time"
)

func GenerateReceiptNumber(orderID int) string {
	return fmt.Sprintf("%dx%d", orderID, time.Now().UnixNano())
}
