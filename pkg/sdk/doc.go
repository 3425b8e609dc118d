// Package ragdex provides a Go client for the ragdex answer service:
// question answering over an indexed audit-records corpus.
//
//	client := ragdex.New("http://localhost:8080", ragdex.WithAPIKey("secret"))
//	res, _ := client.Chat(ctx, ragdex.ChatRequest{
//	    Query:         "What was the largest wire transfer in March?",
//	    VerifyNumbers: true,
//	})
//	fmt.Println(res.Answer)
package ragdex
