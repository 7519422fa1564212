package dnsbench

import (
	"log"
)

func logRequest(executor, server string, res ProbeResult) {
	log.Printf("server:[%s] domain:[%s] executor:[%s] success:[%t] err:[%v] duration:[%v]",
		server, res.Domain, executor, res.Succeeded, res.Err, res.Elapsed)
}
