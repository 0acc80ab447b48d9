package zim_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"

	"github.com/meigma/zim"
)

func ExampleCreateFile() {
	dir, err := os.MkdirTemp("", "zim-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	items := []zim.Item{
		zim.Content(zim.NamespaceArticle, "index.html", "Home", 0, zim.BytesPayload("<h1>Home</h1>")),
		zim.Redirect(zim.NamespaceArticle, "main.html", "Main", 0),
		zim.Content(zim.NamespaceImage, "logo.png", "", 1, zim.BytesPayload{0x89, 'P', 'N', 'G'}),
	}

	res, err := zim.CreateFile(context.Background(), filepath.Join(dir, "site.zim"),
		slices.Values(items), []string{"text/html", "image/png"},
		zim.WithMainPage("index.html"),
		zim.WithCompression(zim.CompressionZstd),
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("articles:", res.Header.ArticleCount)
	fmt.Println("clusters:", res.Header.ClusterCount)
	fmt.Println("main page:", res.Header.MainPage)
	// Output:
	// articles: 3
	// clusters: 2
	// main page: 0
}
