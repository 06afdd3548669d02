// Package htmltext prepares saved HTML documents for extraction.
//
// The crawler normally hands the engine pages it has already fetched. When
// pages come from disk instead, htmltext recovers what a browser would not
// show as text (link targets and structured person markup) so that the
// engine sees it next to the surrounding words.
package htmltext
