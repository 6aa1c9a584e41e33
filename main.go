// The main package for the contact-scraper executable.
package main

import (
	"github.com/JakeFAU/contact-scraper/cmd"
)

func main() {
	cmd.Execute()
}
