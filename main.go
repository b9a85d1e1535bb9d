// aggrechat is a terminal chat client for a multi-model aggregation service.
package main

import "github.com/linanwx/aggrechat/cmd"

func main() {
	cmd.Execute()
}
