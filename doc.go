// Package mandel renders the Mandelbrot set as a grayscale raster and keeps
// track of the viewport an interactive viewer is looking at.
//
// The engine has three layers:
//
//   - [EscapeIterations] and [ColorFor] evaluate a single point.
//   - [Rasterizer] fans a [RenderRequest] out over column bands and fills an
//     *image.RGBA.
//   - [Controller] owns the current [Viewport], turns zoom and pan gestures
//     into new viewports and pushes finished frames to an [ImageSink].
//
// Presentation is left to the caller: anything that can show an *image.RGBA
// implements [ImageSink], and anything that produces [Gesture] values can
// drive a Controller through [Controller.Run].
package mandel
