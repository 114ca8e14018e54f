// Command generate writes sample families for trying columnql:
//
//	go run ./testdata && columnql -d testdata shell
package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
)

type God struct {
	Name    string    `parquet:"name"`
	Age     int64     `parquet:"age"`
	Power   string    `parquet:"power"`
	Weight  float64   `parquet:"weight"`
	Active  bool      `parquet:"active"`
	Created time.Time `parquet:"created,timestamp"`
}

type Temple struct {
	ID    string `parquet:"id,uuid"`
	God   string `parquet:"god"`
	City  string `parquet:"city"`
	Built int32  `parquet:"built"`
}

func write[T any](dir, name string, rows []T) {
	file, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		log.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Generated %s with %d rows", name, len(rows))
}

func main() {
	dir := "testdata"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	write(dir, "God.parquet", []God{
		{Name: "Diana", Age: 10, Power: "hunt", Weight: 60.5, Active: true, Created: day(2020, 1, 1)},
		{Name: "Apollo", Age: 30, Power: "sun", Weight: 82.3, Active: true, Created: day(2019, 6, 15)},
		{Name: "Ares", Age: 45, Power: "war", Weight: 95.0, Active: false, Created: day(2018, 3, 9)},
		{Name: "Athena", Age: 40, Power: "wisdom", Weight: 64.1, Active: true, Created: day(2021, 11, 30)},
		{Name: "Hermes", Age: 22, Power: "travel", Weight: 58.7, Active: true, Created: day(2022, 8, 2)},
	})

	write(dir, "Temple.parquet", []Temple{
		{ID: "0b3d7b4e-5f7c-4c4e-9d8a-2c5b7c3e6a11", God: "Athena", City: "Athens", Built: -447},
		{ID: "6f1c2a9e-3b8d-4f5e-a7c6-1d2e3f4a5b62", God: "Apollo", City: "Delphi", Built: -330},
		{ID: "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c63", God: "Diana", City: "Ephesus", Built: -550},
	})
}
