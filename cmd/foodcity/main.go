// Command foodcity runs the Kota Pangan Mandiri city food simulation.
//
// Usage:
//
//	foodcity serve            # ticker + HTTP API until interrupted
//	foodcity step --days 30   # advance the saved city offline
//	foodcity status           # print the saved city's KPIs
//	foodcity reset            # discard the save and start a new city
//	foodcity catalog          # print the crop and building tables
package main

func main() {
	Execute()
}
