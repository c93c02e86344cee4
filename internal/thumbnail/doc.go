// Package thumbnail stores references and derived formats of assets.
//
// Every asset lives under a directory chosen by a PathGenerator. The
// original upload is stored there under its provider reference name, and
// each derived format as thumb_<id>_<format>.<ext>. Generator writes those
// files through a Storage and answers the URL questions the renderer asks.
package thumbnail
