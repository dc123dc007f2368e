// Package xlate is a bulk translation pipeline for bilingual document files.
//
// Xlate parses XLIFF translation-unit documents into an addressable model,
// classifies each unit by content role, translates units through an AI
// provider with a translation-memory consistency layer, validates marker
// preservation and register compliance, and rebuilds output documents that
// are byte-faithful to the input skeleton. It also emits the cross-language
// group records the destination platform needs to link translated copies of
// one logical content item.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/xlate"
//	    "github.com/ZaguanLabs/xlate/document"
//	    "github.com/ZaguanLabs/xlate/memory"
//	    "github.com/ZaguanLabs/xlate/pipeline"
//	    "github.com/ZaguanLabs/xlate/provider"
//	)
//
//	func main() {
//	    doc, err := document.Parse(input)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    orch := pipeline.NewOrchestrator(p, memory.NewInMemoryStore())
//	    batch := pipeline.NewBatch(orch)
//
//	    report, results := batch.Run(context.Background(), []*document.Document{doc})
//	    for _, dr := range results {
//	        if dr.Err != nil {
//	            log.Fatal(dr.Err)
//	        }
//	        os.Stdout.Write(dr.Output)
//	    }
//	    fmt.Print(report)
//	}
package xlate
