// Package ai asks a language model for a handwriting style and a layout
// plan.
//
// Both calls are best effort. [Client.InferStyle] always yields a usable
// [style.Config]: when no provider is configured, or the model fails or
// answers with something unparsable, the keyword rules of
// [InferStyleOffline] decide instead. [Client.PlanLayout] returns nil on any
// failure so that the caller can hand the nil draft straight to
// plan.PlanDocument, which treats it like "not supplied".
//
// Providers are reached through langchaingo. [NewModel] builds an
// llms.Model for one of [ProviderOpenAI], [ProviderAnthropic],
// [ProviderMistral] or [ProviderOllama]:
//
//	model, err := ai.NewModel(ai.Config{Provider: ai.ProviderOllama, Model: "llama3.1"})
//	client := ai.NewClient(model, cfg, logger)
//	draft := client.PlanLayout(ctx, pages)
//	p := plan.PlanDocument(pages, draft, s)
package ai
